package common

// Message keys.
const (
	NewSuccess     = "new_success"
	NewError       = "new_error"
	UpdateSuccess  = "update_success"
	UpdateError    = "update_error"
	DeleteSuccess  = "delete_success"
	CloseSuccess   = "close_success"
	IssueSuccess   = "issue_success"
	IssueError     = "issue_error"
	LoginSuccess   = "login_success"
	LoginFail      = "login_fail"
	LogoutSuccess  = "logout_success"
	Inactive       = "inactive"
	PasswordChange = "password_change_success"
	PasswordFail   = "password_change_fail"
)

var messages = map[string]map[string]string{
	"client": {
		NewSuccess:    "New client created",
		NewError:      "The client was not created. The form has the following errors:",
		UpdateSuccess: "Client updated",
		UpdateError:   "The client was not updated. The form has the following errors:",
		DeleteSuccess: "Client deleted",
	},
	"product": {
		NewSuccess:    "New product created",
		NewError:      "The product was not created. The form has the following errors:",
		UpdateSuccess: "Product updated",
		UpdateError:   "The product was not updated",
		DeleteSuccess: "Product deleted",
		IssueSuccess:  "Specification issued",
		IssueError:    "The specification was not issued. The form has the following errors:",
	},
	"order": {
		NewSuccess:    "New production order created",
		NewError:      "The production order was not created. The form has the following errors:",
		UpdateSuccess: "Production order updated",
		UpdateError:   "The production order was not updated. The form has the following errors:",
		DeleteSuccess: "Production order deleted",
	},
	"measurement_report": {
		NewSuccess:    "Measurement report added",
		NewError:      "The measurement report was not added. The form has the following errors:",
		UpdateSuccess: "Measurement report updated",
		UpdateError:   "The measurement report was not updated. The form has the following errors:",
		CloseSuccess:  "Measurements completed",
	},
	"user": {
		LoginSuccess:   "Logged in",
		LoginFail:      "Login failed. The form has the following errors:",
		LogoutSuccess:  "Logged out",
		Inactive:       "The user is inactive and has been locked out",
		PasswordChange: "Password changed",
		PasswordFail:   "The password was not changed. The form has the following errors:",
	},
}

// Msg returns the user message for an entity and key, or "" if none.
func Msg(entity, key string) string {
	return messages[entity][key]
}
