package user

import (
	"bitwise74/dashboard-api/internal"
	"net/http"

	"github.com/gin-gonic/gin"
)

type authenticateBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func UserAuthenticate(c *gin.Context, d *internal.Deps) {
	var data authenticateBody
	if err := d.Validator.BindRequest(c.Request, "authenticate", &data); err != nil {
		c.Error(err)
		return
	}

	u, token, err := d.Users.Authenticate(c.Request.Context(), data.Username, data.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"username": u.Username,
			"id":       u.ID,
			"email":    u.Email,
		},
		"token": token,
	})
}
