package models

/************************************************
/**** MARK: ERROR KINDS ****/
/************************************************/
const ERROR_VALIDATION = "VALIDATION_ERROR"
const ERROR_NOT_FOUND = "NOT_FOUND"
const ERROR_ALREADY_INVOICED = "BILLING_ALREADY_INVOICED"
const ERROR_PACKAGE_EXPIRED = "PACKAGE_EXPIRED"
const ERROR_INVALID_TRANSITION = "INVALID_TRANSITION"
const ERROR_DUPLICATE_SALE_NUMBER = "DUPLICATE_SALE_NUMBER"
const ERROR_CONCURRENT_EXECUTION = "CONCURRENT_EXECUTION"
const ERROR_COMPUTATION = "COMPUTATION_ERROR"

// DomainError carrega um tipo estável (Kind) para a camada HTTP decidir o status
// e uma mensagem em português para a UI exibir direto.
type DomainError struct {
	Kind    string `json:"error"`
	Message string `json:"message"`

	// RequiresConfirmation indica que a operação pode ser repetida com force=true
	// (protocolo de confirmação em duas etapas para registros já faturados).
	RequiresConfirmation bool `json:"requiresConfirmation,omitempty"`
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewValidationError(message string) *DomainError {
	return &DomainError{Kind: ERROR_VALIDATION, Message: message}
}

func NewNotFoundError(message string) *DomainError {
	return &DomainError{Kind: ERROR_NOT_FOUND, Message: message}
}

func NewInvalidTransitionError(message string) *DomainError {
	return &DomainError{Kind: ERROR_INVALID_TRANSITION, Message: message}
}

// NewAlreadyInvoicedError sinaliza que a venda vinculada já foi faturada e que a
// operação destrutiva só prossegue com confirmação explícita do operador.
func NewAlreadyInvoicedError(message string) *DomainError {
	return &DomainError{Kind: ERROR_ALREADY_INVOICED, Message: message, RequiresConfirmation: true}
}

// IsDomainError extrai um *DomainError de um erro qualquer (ou nil).
func IsDomainError(err error) (*DomainError, bool) {
	if err == nil {
		return nil, false
	}
	de, ok := err.(*DomainError)
	return de, ok
}
