package scoring

import (
	"fmt"
	"strings"
)

// DefaultRenewablePercentage is used when neither the request nor the
// application has a renewable share.
const DefaultRenewablePercentage = 50.0

// Defaults holds the values substituted for omitted optional request fields.
type Defaults struct {
	RenewablePercentage  float64
	ApplicationRenewable map[string]float64
}

// RenewableFor returns the configured renewable share for an application tag,
// falling back to the global default.
func (d Defaults) RenewableFor(application string) float64 {
	if v, ok := d.ApplicationRenewable[normalizeApplication(application)]; ok {
		return v
	}
	return d.RenewablePercentage
}

func normalizeApplication(application string) string {
	return strings.ToLower(strings.TrimSpace(application))
}

// Validate turns a raw payload into an EvaluationRequest. The first invalid
// field aborts validation with a *ValidationError. An empty component list is
// valid.
func Validate(raw RawRequest, defaults Defaults) (EvaluationRequest, error) {
	req := EvaluationRequest{
		Application: strings.TrimSpace(raw.Application),
		Components:  make([]Component, 0, len(raw.Components)),
	}

	for i, rc := range raw.Components {
		prefix := fmt.Sprintf("components[%d]", i)

		consumption, err := required(rc.Consumption, prefix+".consumption")
		if err != nil {
			return EvaluationRequest{}, err
		}
		lifespan, err := required(rc.Lifespan, prefix+".lifespan")
		if err != nil {
			return EvaluationRequest{}, err
		}
		waste, err := optional(rc.WasteKg, prefix+".waste_kg", 0)
		if err != nil {
			return EvaluationRequest{}, err
		}

		req.Components = append(req.Components, Component{
			Name:        rc.Name,
			Type:        rc.Type,
			Consumption: consumption,
			Lifespan:    lifespan,
			WasteKg:     waste,
		})
		req.WasteKg += waste
	}

	renewable, err := optional(raw.RenewablePercentage, "renewable_percentage", defaults.RenewableFor(req.Application))
	if err != nil {
		return EvaluationRequest{}, err
	}
	req.RenewablePercentage = renewable

	waste, err := optional(raw.WasteKg, "waste_kg", 0)
	if err != nil {
		return EvaluationRequest{}, err
	}
	req.WasteKg += waste

	if raw.Reusable != nil {
		req.Reusable = *raw.Reusable
	}

	return req, nil
}

func required(q Quantity, field string) (float64, error) {
	v, ok := q.Float()
	if !ok {
		return 0, &ValidationError{Field: field, Reason: ReasonMissingOrNaN}
	}
	if v < 0 {
		return 0, &ValidationError{Field: field, Reason: ReasonNegativeValue}
	}
	return v, nil
}

func optional(q Quantity, field string, def float64) (float64, error) {
	if !q.IsSet() {
		return def, nil
	}
	return required(q, field)
}
