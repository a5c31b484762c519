package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/journal/internal/client/models"
)

// GetMetrics returns the metric set for a date, or nil when the server has
// none. Absence is a normal state, not an error.
func (g *Gateway) GetMetrics(ctx context.Context, date models.Date) (*models.MetricSet, error) {
	q := url.Values{"date": {date.String()}}

	var m models.MetricSet
	err := g.do(ctx, http.MethodGet, "/metrics", q, nil, &m, callOpts{})
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := validateMetricSet(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMetrics returns the metric sets present in the inclusive date range.
// Dates without a set are simply absent from the result.
func (g *Gateway) ListMetrics(ctx context.Context, from, to models.Date) ([]models.MetricSet, error) {
	q := url.Values{"from": {from.String()}, "to": {to.String()}}

	var sets []models.MetricSet
	if err := g.do(ctx, http.MethodGet, "/metrics", q, nil, &sets, callOpts{}); err != nil {
		return nil, err
	}
	for i := range sets {
		if err := validateMetricSet(&sets[i]); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

// UpsertMetrics stores the full metric set for its date. There is no
// partial-field update at this boundary: callers merge locally and send the
// whole object.
func (g *Gateway) UpsertMetrics(ctx context.Context, m models.MetricSet) (models.MetricSet, error) {
	var out models.MetricSet
	if err := g.do(ctx, http.MethodPut, "/metrics/"+m.Date.String(), nil, m, &out, callOpts{}); err != nil {
		return models.MetricSet{}, err
	}
	if err := validateMetricSet(&out); err != nil {
		return models.MetricSet{}, err
	}
	return out, nil
}

func validateMetricSet(m *models.MetricSet) error {
	if _, err := models.ParseDate(m.Date.String()); err != nil {
		return fmt.Errorf("metrics: %w: %v", ErrBadPayload, err)
	}
	return nil
}
