package services

import (
	"github.com/emprestafacil/emprestafacil-api/internal/config"
	"github.com/emprestafacil/emprestafacil-api/internal/jobs"
	"github.com/emprestafacil/emprestafacil-api/internal/repository"
	"github.com/emprestafacil/emprestafacil-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Client       *ClientService
	Loan         *LoanService
	Payment      *PaymentService
	Notification *NotificationService
	Settings     *SettingsService
	Report       *ReportService
	Export       *ExportService
	Contract     *ContractService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config) *Services {
	notificationSvc := NewNotificationService(repos.Notification)
	reportSvc := NewReportService(repos.Loan, repos.Client, repos.Payment, repos.User)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.Settings, cfg),
		User:         NewUserService(repos.User),
		Client:       NewClientService(repos.Client),
		Loan:         NewLoanService(repos.Loan, repos.Client, repos.Settings, notificationSvc),
		Payment:      NewPaymentService(repos.Payment, repos.Loan, notificationSvc, worker),
		Notification: notificationSvc,
		Settings:     NewSettingsService(repos.Settings, repos.User),
		Report:       reportSvc,
		Export:       NewExportService(reportSvc),
		Contract:     NewContractService(repos.Loan, repos.User, repos.Document, storage),
		Job:          NewJobService(worker),
	}
}
