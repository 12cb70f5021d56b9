package conversion

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	conv "github.com/amirasaad/tem/pkg/conversion"
	conversionSvc "github.com/amirasaad/tem/pkg/service/conversion"
	"github.com/amirasaad/tem/webapi/common"
)

// Routes sets up rate and conversion routes
func Routes(app *fiber.App, svc *conversionSvc.Service) {
	app.Get("/api/rates/resolve", ResolveRate(svc))
	app.Get("/api/rates/history", RateHistory(svc))
	app.Post("/api/conversions/quote", Quote(svc))
}

// ResolveRate resolves the historical rate for a currency and date
// @Summary Resolve a historical rate
// @Description Find the rate for the date, falling back to the closest earlier day within the look-back window
// @Tags rates
// @Produce json
// @Param date query string true "Transaction date (YYYY-MM-DD)"
// @Param currency query string true "Currency code (e.g., USD)"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 422 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /api/rates/resolve [get]
func ResolveRate(svc *conversionSvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		date := c.Query("date")
		currency := c.Query("currency")
		if date == "" || currency == "" {
			return common.ErrorResponseJSON(
				c,
				fiber.StatusBadRequest,
				"Missing parameters",
				"date and currency are required",
			)
		}

		res, err := svc.ResolveRate(c.UserContext(), date, currency)
		if err != nil {
			return common.ProblemDetailsJSON(c, resolveTitle(err), err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, ResolveMessage(res), ToResolutionDTO(res))
	}
}

// RateHistory lists the stored rates for a currency
// @Summary List stored rates
// @Description Every day already resolved for the currency, newest first
// @Tags rates
// @Produce json
// @Param currency query string true "Currency code (e.g., USD)"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 503 {object} common.ProblemDetails
// @Router /api/rates/history [get]
func RateHistory(svc *conversionSvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		currency := c.Query("currency")
		if currency == "" {
			return common.ErrorResponseJSON(
				c,
				fiber.StatusBadRequest,
				"Missing parameters",
				"currency is required",
			)
		}
		rates, err := svc.RateHistory(c.UserContext(), currency)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Rate history unavailable", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Rate history fetched", ToRateDTOs(rates))
	}
}

// Quote runs the expense form conversion for the given inputs
// @Summary Quote a conversion
// @Description Resolve the rate for the date and currency, or use the manual rate, and convert the amount
// @Tags conversions
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Form inputs"
// @Success 200 {object} common.Response
// @Failure 400 {object} common.ProblemDetails
// @Failure 504 {object} common.ProblemDetails
// @Router /api/conversions/quote [post]
func Quote(svc *conversionSvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		input, err := common.BindAndValidate[QuoteRequest](c)
		if input == nil {
			return err
		}

		q, err := svc.Quote(c.UserContext(), conversionSvc.QuoteRequest{
			Date:       input.Date,
			Currency:   input.Currency,
			Amount:     input.Amount,
			ManualRate: input.ManualRate,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Quote failed", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Quote settled", ToQuoteDTO(q))
	}
}

func resolveTitle(err error) string {
	var rerr *conv.ResolveError
	if errors.As(err, &rerr) {
		return "Rate not resolved"
	}
	return "Invalid rate request"
}
