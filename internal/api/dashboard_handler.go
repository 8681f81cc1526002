package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ajharbinger/churnguard/internal/auth"
	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/models"
	"github.com/ajharbinger/churnguard/internal/recommend"
	"github.com/ajharbinger/churnguard/internal/services"
)

const dashboardTemplate = "dashboard.html"

// DashboardHandler serves the HTML form and its results
type DashboardHandler struct {
	assessmentService services.AssessmentService
	secureCookies     bool
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(assessmentService services.AssessmentService, secureCookies bool) *DashboardHandler {
	return &DashboardHandler{
		assessmentService: assessmentService,
		secureCookies:     secureCookies,
	}
}

// ProfileForm is the urlencoded dashboard form. Enums and yes/no selects arrive as text.
// Nothing is required at bind time; missing numbers stay zero and fail profile validation.
type ProfileForm struct {
	Variant         string  `form:"variant"`
	Age             int     `form:"age"`
	Gender          string  `form:"gender"`
	CreditScore     int     `form:"credit_score"`
	Balance         float64 `form:"balance"`
	EstimatedSalary float64 `form:"estimated_salary"`
	HasCrCard       string  `form:"has_cr_card"`
	Tenure          int     `form:"tenure"`
	NumOfProducts   int     `form:"num_of_products"`
	IsActiveMember  string  `form:"is_active_member"`
	Geography       string  `form:"geography"`
}

// Profile converts the form into a CustomerProfile. Range checks are left to the scorer.
func (f ProfileForm) Profile() (models.CustomerProfile, error) {
	var problems []string

	gender, err := models.ParseGender(f.Gender)
	if err != nil {
		problems = append(problems, err.Error())
	}
	geography, err := models.ParseGeography(f.Geography)
	if err != nil {
		problems = append(problems, err.Error())
	}
	hasCrCard, err := parseYesNo(f.HasCrCard)
	if err != nil {
		problems = append(problems, "has_cr_card: "+err.Error())
	}
	isActive, err := parseYesNo(f.IsActiveMember)
	if err != nil {
		problems = append(problems, "is_active_member: "+err.Error())
	}

	if len(problems) > 0 {
		return models.CustomerProfile{}, errors.InvalidInput("invalid form values", nil).
			WithDetails(strings.Join(problems, "; ")).
			WithOperation("ParseProfileForm")
	}

	return models.CustomerProfile{
		Age:             f.Age,
		Gender:          gender,
		CreditScore:     f.CreditScore,
		Balance:         f.Balance,
		EstimatedSalary: f.EstimatedSalary,
		HasCrCard:       hasCrCard,
		Tenure:          f.Tenure,
		NumOfProducts:   f.NumOfProducts,
		IsActiveMember:  isActive,
		Geography:       geography,
	}, nil
}

func parseYesNo(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1", "on":
		return true, nil
	case "no", "false", "0", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("expected Yes or No, got %q", s)
	}
}

// dashboardView is the template data for dashboard.html
type dashboardView struct {
	Variant     models.Variant
	Variants    []models.Variant
	Playbook    *recommend.Playbook
	Profile     models.CustomerProfile
	Genders     []models.Gender
	Geographies []models.Geography
	CSRFToken   string
	Report      *services.Report
	Error       *errors.AppError
}

func (h *DashboardHandler) resolveVariant(name string) (models.Variant, error) {
	if name == "" {
		return h.assessmentService.DefaultVariant(), nil
	}
	v, err := models.ParseVariant(name)
	if err != nil {
		return "", errors.InvalidInput(err.Error(), nil).WithOperation("Dashboard")
	}
	return v, nil
}

func (h *DashboardHandler) render(c *gin.Context, status int, view dashboardView) {
	playbook, _ := recommend.ForVariant(view.Variant)
	view.Playbook = playbook
	view.Variants = models.Variants
	view.Genders = models.Genders
	view.Geographies = models.Geographies
	view.CSRFToken = auth.EnsureCSRFToken(c, h.secureCookies)
	c.HTML(status, dashboardTemplate, view)
}

// Index renders the empty form for ?variant= with that variant's defaults
func (h *DashboardHandler) Index(c *gin.Context) {
	variant, err := h.resolveVariant(c.Query("variant"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.render(c, http.StatusOK, dashboardView{
		Variant: variant,
		Profile: models.DefaultProfileFor(variant),
	})
}

// Predict scores the submitted form and renders the result under it
func (h *DashboardHandler) Predict(c *gin.Context) {
	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	variant, err := h.resolveVariant(form.Variant)
	if err != nil {
		respondError(c, err)
		return
	}

	profile, err := form.Profile()
	if err != nil {
		appErr := toAppError(err)
		h.render(c, appErr.StatusCode(), dashboardView{Variant: variant, Profile: models.DefaultProfileFor(variant), Error: appErr})
		return
	}

	report, err := h.assessmentService.Assess(c.Request.Context(), services.AssessmentRequest{
		Variant: variant,
		Profile: profile,
	})
	if err != nil {
		appErr := toAppError(err)
		_ = c.Error(err)
		h.render(c, appErr.StatusCode(), dashboardView{Variant: variant, Profile: profile, Error: appErr})
		return
	}

	h.render(c, http.StatusOK, dashboardView{
		Variant: variant,
		Profile: profile,
		Report:  report,
	})
}
