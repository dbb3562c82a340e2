package user

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

type changeBody struct {
	Password string `json:"password"`
}

// UserChangePassword runs behind the schema guard and the reset gate, the
// token being the one from the reset mail
func UserChangePassword(c *gin.Context, d *internal.Deps) {
	var data changeBody
	if err := d.Validator.BindRequest(c.Request, "change", &data); err != nil {
		c.Error(err)
		return
	}

	claims := middleware.Claims(c)

	if err := d.Users.ChangePassword(c.Request.Context(), claims.Username, c.GetString("token"), data.Password); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Password was changed.",
	})
}
