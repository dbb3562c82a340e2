package source

import (
	"bitwise74/dashboard-api/internal"
	"bitwise74/dashboard-api/internal/model"
	"net/http"

	"github.com/gin-gonic/gin"
)

type sourceBody struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Login    string `json:"login"`
	Passcode string `json:"passcode"`
	Vhost    string `json:"vhost"`
}

func (b sourceBody) model() model.Source {
	return model.Source{
		ID:       b.ID,
		Name:     b.Name,
		Type:     b.Type,
		URL:      b.URL,
		Login:    b.Login,
		Passcode: b.Passcode,
		Vhost:    b.Vhost,
	}
}

func SourceCreate(c *gin.Context, d *internal.Deps) {
	var data sourceBody
	if err := d.Validator.BindRequest(c.Request, "source", &data); err != nil {
		c.Error(err)
		return
	}

	id, err := d.Sources.Create(c.Request.Context(), c.GetString("userID"), data.model())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}
