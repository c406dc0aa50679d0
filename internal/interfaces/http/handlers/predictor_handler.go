package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/crp/internal/application/dto"
	appService "github.com/turtacn/crp/internal/application/service"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
	"github.com/turtacn/crp/pkg/utils"
)

// PageTemplate is the template name rendered for the predictor page.
const PageTemplate = "predictor.html"

// PageView is the data behind the predictor page.
type PageView struct {
	Fields  models.FormInput
	Loading bool
	Error   string
	Result  *models.ResultView
}

func newPageView(state *dto.SessionResponse) PageView {
	if state == nil {
		return PageView{}
	}
	return PageView{
		Fields:  state.Fields,
		Loading: state.Loading,
		Error:   state.Error,
		Result:  state.Result,
	}
}

// PredictorHandler 处理预测表单页面与 JSON API
type PredictorHandler struct {
	app appService.PredictionAppService
	log logger.Logger
}

// NewPredictorHandler creates a new PredictorHandler.
func NewPredictorHandler(app appService.PredictionAppService, log logger.Logger) *PredictorHandler {
	return &PredictorHandler{
		app: app,
		log: log.WithComponent("predictor_handler"),
	}
}

// Index renders the form for the caller's session.
func (h *PredictorHandler) Index(c *gin.Context) {
	state, err := h.app.GetState(c.Request.Context(), SessionIDFrom(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	c.HTML(http.StatusOK, PageTemplate, newPageView(dto.NewSessionResponse(state)))
}

// SubmitForm handles the classic form post: store the fields, submit, render.
// A failed prediction still renders the page, with the generic error text.
func (h *PredictorHandler) SubmitForm(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := SessionIDFrom(c)

	var fields models.FormInput
	if err := c.ShouldBind(&fields); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest("invalid form body").WithCause(err))
		return
	}
	if _, err := h.app.UpdateFields(ctx, sessionID, fields); err != nil {
		dto.SendError(c, err)
		return
	}

	res, err := h.app.Submit(ctx, sessionID)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	c.HTML(http.StatusOK, PageTemplate, newPageView(res.State))
}

// GetSession godoc
// @Summary      Current form state
// @Tags         session
// @Produce      json
// @Success      200  {object}  dto.APIResponse
// @Router       /api/v1/session [get]
func (h *PredictorHandler) GetSession(c *gin.Context) {
	state, err := h.app.GetState(c.Request.Context(), SessionIDFrom(c))
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, dto.NewSessionResponse(state))
}

// UpdateField godoc
// @Summary      Set one form field to the raw text typed by the user
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        name  path  string  true  "creditLimit, age, billAmount or paymentAmount"
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/v1/session/fields/{name} [put]
func (h *PredictorHandler) UpdateField(c *gin.Context) {
	name := dto.FieldNameRequest{Name: c.Param("name")}
	if err := utils.ValidateStruct(name); err != nil {
		dto.SendError(c, err)
		return
	}

	var req dto.FieldUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest("invalid JSON body").WithCause(err))
		return
	}

	state, err := h.app.UpdateField(c.Request.Context(), SessionIDFrom(c), name.Name, req.Value)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, dto.NewSessionResponse(state))
}

// CreatePrediction godoc
// @Summary      Submit the session's form
// @Description  An optional body replaces all four fields before submitting.
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.APIResponse
// @Failure      502  {object}  dto.APIResponse
// @Router       /api/v1/predictions [post]
func (h *PredictorHandler) CreatePrediction(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := SessionIDFrom(c)

	if c.Request.ContentLength != 0 {
		var fields models.FormInput
		if err := c.ShouldBindJSON(&fields); err != nil {
			dto.SendError(c, errors.ErrInvalidRequest("invalid JSON body").WithCause(err))
			return
		}
		if _, err := h.app.UpdateFields(ctx, sessionID, fields); err != nil {
			dto.SendError(c, err)
			return
		}
	}

	res, err := h.app.Submit(ctx, sessionID)
	if err != nil {
		dto.SendError(c, err)
		return
	}
	if res.Failed() && res.Applied {
		dto.SendError(c, res.Err)
		return
	}
	dto.SendSuccess(c, res)
}

// Classify godoc
// @Summary      Classify a prediction and probability into a risk level
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Success      200  {object}  dto.APIResponse
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/v1/classify [post]
func (h *PredictorHandler) Classify(c *gin.Context) {
	var req dto.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.SendError(c, errors.ErrInvalidRequest("invalid JSON body").WithCause(err))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		dto.SendError(c, err)
		return
	}
	dto.SendSuccess(c, dto.NewClassifyResponse(service.Classify(*req.Prediction, *req.Probability)))
}

//Personal.AI order the ending
