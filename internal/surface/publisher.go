package surface

import (
	"maps"
	"sync"

	"github.com/rs/zerolog"

	"webview-cli/pkg/models"
)

// Publisher receives catalog and value updates from a session and keeps
// the latest copy for the HTTP API.
type Publisher struct {
	mu sync.RWMutex

	catalog Catalog
	values  map[string]string
	status  models.Health
	message string
	// generation increments on every full republish.
	generation int

	log zerolog.Logger
}

func NewPublisher(log zerolog.Logger) *Publisher {
	return &Publisher{
		values: make(map[string]string),
		status: models.HealthUnknown,
		log:    log,
	}
}

func (p *Publisher) PublishActions(actions []Action) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog.Actions = actions
	p.generation++
	p.log.Debug().Int("actions", len(actions)).Int("generation", p.generation).Msg("actions published")
}

func (p *Publisher) PublishFeedbacks(feedbacks []Feedback) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog.Feedbacks = feedbacks
}

func (p *Publisher) PublishVariables(variables []Variable) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog.Variables = variables
}

func (p *Publisher) PublishPresets(presets []Button) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog.Presets = presets
}

func (p *Publisher) SetVariableValues(values map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	maps.Copy(p.values, values)
}

// CheckFeedbacks is a no-op: feedbacks are evaluated on request.
func (p *Publisher) CheckFeedbacks() {}

func (p *Publisher) SetStatus(status models.Health, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != status {
		p.log.Info().Str("status", string(status)).Str("message", message).Msg("session status changed")
	}
	p.status, p.message = status, message
}

func (p *Publisher) Catalog() Catalog {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.catalog
}

func (p *Publisher) Values() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.values)
}

func (p *Publisher) Status() (models.Health, string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status, p.message
}

// Generation counts full republishes.
func (p *Publisher) Generation() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation
}
