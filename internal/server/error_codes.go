package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidName     = 1003
	ErrCodeInvalidUUID     = 1004
	ErrCodeMissingRequired = 1005
	ErrCodeInvalidEmail    = 1006
	ErrCodeTooManyFiles    = 1007
	ErrCodeFileTooLarge    = 1008

	// Domain state (2xxx)
	ErrCodeBlobNotFound      = 2001
	ErrCodeComplaintNotFound = 2002
	ErrCodeFileNotFound      = 2003

	// Auth & gate (3xxx)
	ErrCodeUnauthorized  = 3001
	ErrCodeForbidden     = 3002
	ErrCodeSuspicious    = 3003
	ErrCodeTokenRejected = 3004
	ErrCodeCaptchaFailed = 3005

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeCaptchaService = 4003
	ErrCodeEmailDelivery  = 4004
	ErrCodeStorageFailure = 4005
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeBlobNotFound
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
