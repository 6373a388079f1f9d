package handlers

import (
	"github.com/emprestafacil/emprestafacil-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Client       *ClientHandler
	Loan         *LoanHandler
	Payment      *PaymentHandler
	Contract     *ContractHandler
	Notification *NotificationHandler
	Settings     *SettingsHandler
	Report       *ReportHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Client:       NewClientHandler(svcs.Client),
		Loan:         NewLoanHandler(svcs.Loan),
		Payment:      NewPaymentHandler(svcs.Payment),
		Contract:     NewContractHandler(svcs.Contract),
		Notification: NewNotificationHandler(svcs.Notification),
		Settings:     NewSettingsHandler(svcs.Settings),
		Report:       NewReportHandler(svcs.Report, svcs.Export),
		Job:          NewJobHandler(svcs.Job),
	}
}
