package user

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type resetBody struct {
	Username string `json:"username"`
}

// UserResetPassword issues a reset ticket. The mail goes out in the
// background so the response doesn't wait on the SMTP relay.
func UserResetPassword(c *gin.Context, d *internal.Deps) {
	var data resetBody
	if err := d.Validator.BindRequest(c.Request, "request", &data); err != nil {
		c.Error(err)
		return
	}

	if err := d.Users.RequestReset(c.Request.Context(), data.Username); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"message": "Forgot password e-mail sent.",
	})
}
