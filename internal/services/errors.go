package services

import "errors"

// Common service errors
var (
	ErrNotFound           = errors.New("registro não encontrado")
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	ErrInvalidPassword    = errors.New("senha atual incorreta")
	ErrUnauthorized       = errors.New("não autorizado")
	ErrInvalidState       = errors.New("transição de status inválida")
	ErrDuplicate          = errors.New("registro duplicado")
	ErrClientHasLoans     = errors.New("cliente possui empréstimos e não pode ser excluído")
	ErrInvalidStatus      = errors.New("status de empréstimo inválido")
	ErrInvalidPlan        = errors.New("plano inválido")
	ErrNonPositivePayment = errors.New("valor do pagamento deve ser positivo")
)
