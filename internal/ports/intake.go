package ports

// Intake is a long-running surface that feeds emails into the classification
// service, such as the HTTP dashboard or the SMTP listener
type Intake interface {
	// Start starts the intake without blocking
	Start() error

	// Stop stops the intake
	Stop() error
}
