package domain

// Severity of an outcome message.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Message is one user-facing outcome. Code and Params are rendered to text
// by a translator outside the pipeline.
type Message struct {
	Severity Severity
	Code     string
	Params   map[string]string
}

// Message codes emitted by the account pipeline.
const (
	MsgRequestRejected           = "REQUEST_REJECTED"
	MsgMasterAccountNotExists    = "MASTER_ACCOUNT_NOT_EXISTS"
	MsgRegistrationDisabled      = "ACCOUNT_REGISTRATION_DISABLED"
	MsgRegistrationLogout        = "ACCOUNT_REGISTRATION_LOGOUT"
	MsgCaptchaFail               = "CAPTCHA_FAIL"
	MsgUsernameInUse             = "ACCOUNT_USERNAME_IN_USE"
	MsgEmailInUse                = "ACCOUNT_EMAIL_IN_USE"
	MsgRegistrationCompleteType1 = "ACCOUNT_REGISTRATION_COMPLETE_TYPE1"
	MsgRegistrationCompleteType2 = "ACCOUNT_REGISTRATION_COMPLETE_TYPE2"
	MsgLoginAlreadyComplete      = "LOGIN_ALREADY_COMPLETE"
	MsgUserOrPassInvalid         = "ACCOUNT_USER_OR_PASS_INVALID"
	MsgAccountDisabled           = "ACCOUNT_DISABLED"
	MsgAccountInactive           = "ACCOUNT_INACTIVE"
	MsgWelcome                   = "ACCOUNT_WELCOME"
	MsgAccessDenied              = "ACCESS_DENIED"
	MsgPasswordInvalid           = "ACCOUNT_PASSWORD_INVALID"
	MsgSpecifyLocale             = "ACCOUNT_SPECIFY_LOCALE"
	MsgSettingsUpdated           = "ACCOUNT_SETTINGS_UPDATED"
	MsgLogoutComplete            = "ACCOUNT_LOGOUT_COMPLETE"
	MsgServerError               = "SERVER_ERROR"
)
