package expense

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amirasaad/tem/pkg/expense"
	conversionSvc "github.com/amirasaad/tem/pkg/service/conversion"
	"github.com/amirasaad/tem/webapi/common"
)

// SummaryRequest is the body of POST /api/expenses/summary.
type SummaryRequest struct {
	Expenses      []expense.Expense `json:"expenses" validate:"dive"`
	IncludeDrafts bool              `json:"includeDrafts"`
}

// Routes sets up expense reporting routes
func Routes(app *fiber.App, svc *conversionSvc.Service) {
	app.Post("/api/expenses/summary", Summary(svc))
	app.Post("/api/expenses/prepare", Prepare(svc))
}

// PrepareResponse is the expense record to save and the form state behind it.
type PrepareResponse struct {
	Expense          *expense.Expense `json:"expense"`
	State            string           `json:"state"`
	ConversionResult *string          `json:"conversionResult"`
}

// Prepare builds the record an expense form saves, with its conversion
// @Summary Prepare an expense
// @Description Quote the conversion for a foreign expense and attach it. A missing rate does not block the expense
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body conversion.ExpenseRequest true "Expense form"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/expenses/prepare [post]
func Prepare(svc *conversionSvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[conversionSvc.ExpenseRequest](c)
		if input == nil {
			return err
		}
		e, q, err := svc.PrepareExpense(c.UserContext(), *input)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid expense", err)
		}
		resp := PrepareResponse{Expense: e}
		if q != nil {
			resp.State = q.State.String()
			resp.ConversionResult = q.ConversionResult
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Expense prepared", resp)
	}
}

// Summary totals a list of expenses in INR
// @Summary Summarize expenses
// @Description Totals by status, category and project. Drafts are excluded unless includeDrafts is set
// @Tags expenses
// @Accept json
// @Produce json
// @Param request body SummaryRequest true "Expenses to summarize"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Router /api/expenses/summary [post]
func Summary(svc *conversionSvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[SummaryRequest](c)
		if input == nil {
			return err
		}
		summary := svc.Summarize(input.Expenses, input.IncludeDrafts)
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Summary computed", summary)
	}
}
