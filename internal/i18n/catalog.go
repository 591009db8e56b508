package i18n

// entry is one translatable message. params lists, in placeholder order, the
// message param names substituted for {0}, {1}, ...
type entry struct {
	params []string
	en     string
	fr     string
}

var catalog = map[string]entry{
	"REQUEST_REJECTED": {
		en: "Your request could not be processed.",
		fr: "Votre demande n'a pas pu être traitée.",
	},
	"SERVER_ERROR": {
		en: "Oops, looks like our server might have goofed. Please try again later.",
		fr: "Oups, notre serveur a rencontré un problème. Veuillez réessayer plus tard.",
	},
	"MASTER_ACCOUNT_NOT_EXISTS": {
		en: "The master account has not been created yet.",
		fr: "Le compte principal n'a pas encore été créé.",
	},
	"ACCOUNT_REGISTRATION_DISABLED": {
		en: "We're sorry, account registration has been disabled.",
		fr: "Désolé, l'inscription est désactivée.",
	},
	"ACCOUNT_REGISTRATION_LOGOUT": {
		en: "You are already signed in. Please sign out before registering a new account.",
		fr: "Vous êtes déjà connecté. Déconnectez-vous avant de créer un nouveau compte.",
	},
	"CAPTCHA_FAIL": {
		en: "Failed captcha validation.",
		fr: "Le captcha est incorrect.",
	},
	"ACCOUNT_USERNAME_IN_USE": {
		params: []string{"user_name"},
		en:     "Username '{0}' is already in use.",
		fr:     "Le nom d'utilisateur '{0}' est déjà utilisé.",
	},
	"ACCOUNT_EMAIL_IN_USE": {
		params: []string{"email"},
		en:     "Email '{0}' is already in use.",
		fr:     "L'adresse '{0}' est déjà utilisée.",
	},
	"ACCOUNT_REGISTRATION_COMPLETE_TYPE1": {
		en: "You have successfully registered. You can now sign in.",
		fr: "Inscription réussie. Vous pouvez maintenant vous connecter.",
	},
	"ACCOUNT_REGISTRATION_COMPLETE_TYPE2": {
		params: []string{"email"},
		en:     "You have successfully registered. An activation link has been sent to {0}.",
		fr:     "Inscription réussie. Un lien d'activation a été envoyé à {0}.",
	},
	"LOGIN_ALREADY_COMPLETE": {
		en: "You are already signed in.",
		fr: "Vous êtes déjà connecté.",
	},
	"ACCOUNT_USER_OR_PASS_INVALID": {
		en: "Username or password is invalid.",
		fr: "Nom d'utilisateur ou mot de passe invalide.",
	},
	"ACCOUNT_DISABLED": {
		en: "This account has been disabled. Please contact us for more information.",
		fr: "Ce compte a été désactivé. Contactez-nous pour plus d'informations.",
	},
	"ACCOUNT_INACTIVE": {
		en: "Your account has not been activated yet. Check your email for the activation link.",
		fr: "Votre compte n'est pas encore activé. Consultez vos e-mails pour le lien d'activation.",
	},
	"ACCOUNT_WELCOME": {
		params: []string{"display_name"},
		en:     "Welcome back, {0}.",
		fr:     "Bon retour, {0}.",
	},
	"ACCESS_DENIED": {
		en: "You do not have permission to do that.",
		fr: "Vous n'avez pas la permission d'effectuer cette action.",
	},
	"ACCOUNT_PASSWORD_INVALID": {
		en: "Current password is incorrect.",
		fr: "Le mot de passe actuel est incorrect.",
	},
	"ACCOUNT_SPECIFY_LOCALE": {
		en: "Please specify a valid locale.",
		fr: "Veuillez choisir une langue valide.",
	},
	"ACCOUNT_SETTINGS_UPDATED": {
		en: "Account settings updated.",
		fr: "Paramètres du compte mis à jour.",
	},
	"ACCOUNT_LOGOUT_COMPLETE": {
		en: "You have been signed out.",
		fr: "Vous avez été déconnecté.",
	},

	// field-level validator messages
	"VALIDATE_REQUIRED": {
		params: []string{"field"},
		en:     "The field '{0}' is required.",
		fr:     "Le champ '{0}' est obligatoire.",
	},
	"VALIDATE_TYPE": {
		params: []string{"field"},
		en:     "The field '{0}' has the wrong type.",
		fr:     "Le champ '{0}' a un type incorrect.",
	},
	"VALIDATE_INVALID": {
		params: []string{"field"},
		en:     "The field '{0}' is invalid.",
		fr:     "Le champ '{0}' est invalide.",
	},
	"ACCOUNT_SPECIFY_USERNAME": {
		en: "Please enter your username.",
		fr: "Veuillez saisir votre nom d'utilisateur.",
	},
	"ACCOUNT_SPECIFY_DISPLAY_NAME": {
		en: "Please enter your display name.",
		fr: "Veuillez saisir votre nom affiché.",
	},
	"ACCOUNT_SPECIFY_EMAIL": {
		en: "Please enter your email address.",
		fr: "Veuillez saisir votre adresse e-mail.",
	},
	"ACCOUNT_SPECIFY_PASSWORD": {
		en: "Please enter your password.",
		fr: "Veuillez saisir votre mot de passe.",
	},
	"ACCOUNT_SPECIFY_CONFIRM_PASSWORD": {
		en: "Please confirm your password.",
		fr: "Veuillez confirmer votre mot de passe.",
	},
	"ACCOUNT_USER_CHAR_LIMIT": {
		en: "Username is too short or too long.",
		fr: "Le nom d'utilisateur est trop court ou trop long.",
	},
	"ACCOUNT_USER_INVALID_CHARACTERS": {
		en: "Username may only contain letters, digits and underscores.",
		fr: "Le nom d'utilisateur ne peut contenir que des lettres, des chiffres et des tirets bas.",
	},
	"ACCOUNT_DISPLAY_CHAR_LIMIT": {
		en: "Display name must be between 1 and 50 characters in length.",
		fr: "Le nom affiché doit comporter entre 1 et 50 caractères.",
	},
	"ACCOUNT_EMAIL_CHAR_LIMIT": {
		en: "Email must be between 1 and 150 characters in length.",
		fr: "L'adresse e-mail doit comporter entre 1 et 150 caractères.",
	},
	"ACCOUNT_INVALID_EMAIL": {
		en: "Invalid email address.",
		fr: "Adresse e-mail invalide.",
	},
	"ACCOUNT_PASS_CHAR_LIMIT": {
		en: "Password must be between 8 and 72 characters in length.",
		fr: "Le mot de passe doit comporter entre 8 et 72 caractères.",
	},
	"ACCOUNT_PASS_WEAK": {
		en: "Password needs upper and lower case letters and a digit.",
		fr: "Le mot de passe doit contenir des majuscules, des minuscules et un chiffre.",
	},
	"ACCOUNT_PASS_MISMATCH": {
		en: "Password and confirmation password must match.",
		fr: "Le mot de passe et sa confirmation doivent correspondre.",
	},
}
