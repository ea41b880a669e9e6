package services

import "errors"

// Общие ошибки, используемые в сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrInvalidMode         = errors.New("unknown tournament mode")
	ErrUnknownAction       = errors.New("unknown action type")
	ErrInvalidPayload      = errors.New("invalid action payload")
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrTeamInUse           = errors.New("team is assigned to a group and cannot be deleted")
	ErrRegistrationNotOpen = errors.New("tournament registration is not open")
	ErrBracketRefused      = errors.New("knockout bracket cannot be built")
	ErrSlotsNotFilled      = errors.New("both team slots must be filled before entering scores")
	ErrCommentRequired     = errors.New("comment text is required")
	ErrActionRejected      = errors.New("action rejected")

	// Ошибки конфликтов
	ErrTeamNameConflict = errors.New("team name is already in use")
	ErrGroupConflict    = errors.New("group already exists")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials  = errors.New("invalid admin password")
	ErrAdminLoginDisabled  = errors.New("admin login is not configured")
	ErrForbiddenOperation  = errors.New("operation not allowed for the current user")
	ErrOwnerActionRequired = errors.New("only the team owner can perform this action")

	// Ошибки, специфичные для сущностей
	ErrTeamNotFound    = errors.New("team not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrMatchNotFound   = errors.New("match not found")
	ErrHistoryNotFound = errors.New("history entry not found")

	// Ошибки хранилища и синхронизации
	ErrServiceClosed  = errors.New("tournament service is closed")
	ErrUploadDisabled = errors.New("file uploads are not configured")
)
