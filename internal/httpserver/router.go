package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/speakerhub/frontend/internal/middleware/auth"
	"github.com/speakerhub/frontend/internal/notify"
	"github.com/speakerhub/frontend/internal/requests"
	"github.com/speakerhub/frontend/internal/session"
	"github.com/speakerhub/frontend/internal/speakers"
)

type Deps struct {
	Session  *session.Service
	Requests *requests.Store
	Catalog  *speakers.Catalog
	Notify   *notify.Center
}

func Register(e *echo.Echo, d *Deps) error {
	r, err := NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = r

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	p := &Pages{
		Session:  d.Session,
		Requests: d.Requests,
		Catalog:  d.Catalog,
		Notify:   d.Notify,
	}

	e.GET("/", p.Home)
	e.GET("/home", p.Home)
	e.GET("/about", p.About)

	e.GET("/speakers", p.Speakers)
	e.POST("/speakers", p.CreateSpeaker)
	e.GET("/speakers/:id", p.SpeakerDetail)
	e.POST("/speakers/:id/reviews", p.PostReview)

	requireLogin := authmw.RequireLogin(d.Session)

	rq := e.Group("/requests", requireLogin)
	rq.GET("", p.RequestsPage)
	rq.POST("", p.CreateRequest)
	rq.POST("/:id", p.UpdateRequest)
	rq.POST("/:id/delete", p.DeleteRequest)
	rq.POST("/:id/status", p.UpdateRequestStatus)

	e.GET("/auth", p.Auth)
	e.POST("/auth/login", p.Login)
	e.POST("/auth/register", p.RegisterUser)
	e.POST("/logout", p.LogoutUser)

	pr := e.Group("/profile", requireLogin)
	pr.GET("", p.Profile)
	pr.POST("", p.UpdateProfile)
	pr.POST("/delete", p.DeleteProfile)

	return nil
}
