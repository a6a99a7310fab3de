package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/speakerhub/frontend/internal/logging"
	"github.com/speakerhub/frontend/internal/middleware/csrf"
	"github.com/speakerhub/frontend/internal/models"
	"github.com/speakerhub/frontend/internal/notify"
	"github.com/speakerhub/frontend/internal/requests"
	"github.com/speakerhub/frontend/internal/session"
	"github.com/speakerhub/frontend/internal/speakers"
)

// Pages are the view handlers. Each one is stateless between requests: it
// reads its data through the session/request/catalog services, renders, and
// on form posts invokes the matching mutator. Errors land in the notifier and
// show up as flash messages on the next render.
type Pages struct {
	Session  *session.Service
	Requests *requests.Store
	Catalog  *speakers.Catalog
	Notify   *notify.Center
}

type baseData struct {
	Title     string
	User      *models.User
	Flash     []notify.Notification
	CSRFToken string
}

func (p *Pages) base(c echo.Context, title string) baseData {
	token, _ := c.Get(csrf.ContextKey).(string)
	return baseData{
		Title:     title,
		User:      p.Session.CurrentUser(),
		Flash:     p.Notify.Drain(),
		CSRFToken: token,
	}
}

type homeData struct {
	baseData
	Featured []models.Speaker
}

func (p *Pages) Home(c echo.Context) error {
	ctx := c.Request().Context()
	featured, err := p.Catalog.List(ctx, 3)
	if err != nil {
		logging.FromContext(ctx).Warn("featured_fetch_failed", "error", err)
	}
	return c.Render(http.StatusOK, "home", homeData{baseData: p.base(c, "Home"), Featured: featured})
}

func (p *Pages) About(c echo.Context) error {
	return c.Render(http.StatusOK, "about", p.base(c, "About"))
}

type speakersData struct {
	baseData
	Speakers []models.Speaker
	Query    string
}

func (p *Pages) Speakers(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := p.Catalog.List(ctx, 0)
	if err != nil {
		p.Notify.Error("We couldn't load the speakers. Please try again later.")
	}
	query := c.QueryParam("q")
	return c.Render(http.StatusOK, "speakers", speakersData{
		baseData: p.base(c, "Speakers"),
		Speakers: speakers.Filter(items, query),
		Query:    query,
	})
}

func (p *Pages) CreateSpeaker(c echo.Context) error {
	ctx := c.Request().Context()
	price, _ := strconv.ParseFloat(c.FormValue("price"), 64)
	_ = p.Catalog.Create(ctx, speakers.CreateSpeakerInput{
		ModelName:    c.FormValue("model_name"),
		Manufacturer: c.FormValue("manufacturer"),
		Price:        price,
		ImageURL:     c.FormValue("image_url"),
		Description:  c.FormValue("description"),
	})
	return c.Redirect(http.StatusSeeOther, "/speakers")
}

type speakerDetailData struct {
	baseData
	Speaker *models.Speaker
}

func (p *Pages) SpeakerDetail(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/speakers")
	}

	sp, err := p.Catalog.Get(ctx, id)
	if err != nil {
		p.Notify.Error("We couldn't load the speaker details. Please try again later.")
		return c.Redirect(http.StatusSeeOther, "/speakers")
	}
	return c.Render(http.StatusOK, "speaker_detail", speakerDetailData{
		baseData: p.base(c, sp.ModelName),
		Speaker:  sp,
	})
}

// PostReview submits one review, then redirects back to the detail page so
// the refreshed speaker carries the updated aggregate rating.
func (p *Pages) PostReview(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/speakers")
	}

	rating, _ := strconv.Atoi(c.FormValue("rating"))
	_ = p.Catalog.CreateReview(ctx, id, rating, c.FormValue("comment"))
	return c.Redirect(http.StatusSeeOther, "/speakers/"+c.Param("id"))
}

type requestsData struct {
	baseData
	Items   []models.Request
	IsAdmin bool
}

func (p *Pages) RequestsPage(c echo.Context) error {
	ctx := c.Request().Context()
	user := p.Session.CurrentUser()
	if user == nil {
		return c.Redirect(http.StatusSeeOther, "/auth")
	}

	p.Requests.Refresh(ctx)
	return c.Render(http.StatusOK, "requests", requestsData{
		baseData: p.base(c, "Requests"),
		Items:    p.Requests.Items(),
		IsAdmin:  user.IsAdmin,
	})
}

func (p *Pages) CreateRequest(c echo.Context) error {
	ctx := c.Request().Context()
	_, _ = p.Requests.Create(ctx, c.FormValue("speaker_name"), c.FormValue("manufacturer"), c.FormValue("reason"))
	return c.Redirect(http.StatusSeeOther, "/requests")
}

func (p *Pages) UpdateRequest(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/requests")
	}
	_ = p.Requests.Update(ctx, id, c.FormValue("reason"))
	return c.Redirect(http.StatusSeeOther, "/requests")
}

func (p *Pages) DeleteRequest(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/requests")
	}
	_ = p.Requests.Delete(ctx, id)
	return c.Redirect(http.StatusSeeOther, "/requests")
}

func (p *Pages) UpdateRequestStatus(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := parseID(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/requests")
	}
	_ = p.Requests.UpdateStatus(ctx, id, models.RequestStatus(c.FormValue("status")))
	return c.Redirect(http.StatusSeeOther, "/requests")
}

type authData struct {
	baseData
	Mode string
}

func (p *Pages) Auth(c echo.Context) error {
	mode := c.QueryParam("mode")
	if mode != "register" {
		mode = "login"
	}
	return c.Render(http.StatusOK, "auth", authData{baseData: p.base(c, "Sign In"), Mode: mode})
}

func (p *Pages) Login(c echo.Context) error {
	ctx := c.Request().Context()
	res := p.Session.Login(ctx, c.FormValue("email"), c.FormValue("password"))
	if !res.Success {
		return c.Redirect(http.StatusSeeOther, "/auth")
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func (p *Pages) RegisterUser(c echo.Context) error {
	ctx := c.Request().Context()
	res := p.Session.Register(ctx, c.FormValue("username"), c.FormValue("email"), c.FormValue("password"))
	if !res.Success {
		return c.Redirect(http.StatusSeeOther, "/auth?mode=register")
	}
	return c.Redirect(http.StatusSeeOther, "/auth")
}

func (p *Pages) LogoutUser(c echo.Context) error {
	p.Session.Logout(c.Request().Context())
	return c.Redirect(http.StatusSeeOther, "/auth")
}

func (p *Pages) Profile(c echo.Context) error {
	if p.Session.CurrentUser() == nil {
		return c.Redirect(http.StatusSeeOther, "/auth")
	}
	return c.Render(http.StatusOK, "profile", p.base(c, "Profile"))
}

func (p *Pages) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	p.Session.UpdateProfile(ctx,
		c.FormValue("username"),
		c.FormValue("email"),
		c.FormValue("current_password"),
		c.FormValue("new_password"),
	)
	return c.Redirect(http.StatusSeeOther, "/profile")
}

func (p *Pages) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	if err := p.Session.DeleteProfile(ctx); err != nil {
		return c.Redirect(http.StatusSeeOther, "/profile")
	}
	return c.Redirect(http.StatusSeeOther, "/auth")
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
