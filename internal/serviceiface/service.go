package serviceiface

// Service is a long-running component the app manager starts in services.yaml
// order and stops in reverse.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
