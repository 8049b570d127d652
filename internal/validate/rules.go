package validate

import "github.com/unclebandit/campaignhub-backend/internal/model"

const (
	msgEmail        = "Please enter a valid email"
	msgPasswordLen  = "Password must be at least 6 characters"
	msgPasswordReq  = "Password is required"
	msgFirstName    = "First name is required"
	msgLastName     = "Last name is required"
	msgCampaignName = "Campaign name is required"
	msgSubject      = "Subject is required"
	msgMessage      = "Message is required"
	msgStatus       = "Status must not be empty"

	MinPasswordLength = 6
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func Register(in RegisterInput) error {
	var v Validator
	v.Email("email", in.Email, msgEmail)
	v.MinLength("password", in.Password, MinPasswordLength, msgPasswordLen)
	v.Required("firstName", in.FirstName, msgFirstName)
	v.Required("lastName", in.LastName, msgLastName)
	return v.Err()
}

func Login(email, password string) error {
	var v Validator
	v.Email("email", email, msgEmail)
	if password == "" {
		v.Add("password", msgPasswordReq)
	}
	return v.Err()
}

func CreateContact(p model.CreateContactParams) error {
	var v Validator
	v.Required("firstName", p.FirstName, msgFirstName)
	v.Required("lastName", p.LastName, msgLastName)
	v.Email("email", p.Email, msgEmail)
	return v.Err()
}

// UpdateContact checks only the fields the caller sent. Phone, company and
// notes are free text.
func UpdateContact(p model.UpdateContactParams) error {
	var v Validator
	if p.FirstName.IsSet() {
		v.Required("firstName", p.FirstName.Value, msgFirstName)
	}
	if p.LastName.IsSet() {
		v.Required("lastName", p.LastName.Value, msgLastName)
	}
	if p.Email.IsSet() {
		v.Email("email", p.Email.Value, msgEmail)
	}
	return v.Err()
}

func CreateCampaign(p model.CreateCampaignParams) error {
	var v Validator
	v.Required("name", p.Name, msgCampaignName)
	v.Required("subject", p.Subject, msgSubject)
	v.Required("message", p.Message, msgMessage)
	return v.Err()
}

func UpdateCampaign(p model.UpdateCampaignParams) error {
	var v Validator
	if p.Name.IsSet() {
		v.Required("name", p.Name.Value, msgCampaignName)
	}
	if p.Subject.IsSet() {
		v.Required("subject", p.Subject.Value, msgSubject)
	}
	if p.Message.IsSet() {
		v.Required("message", p.Message.Value, msgMessage)
	}
	if p.Status.IsSet() {
		v.Required("status", p.Status.Value, msgStatus)
	}
	return v.Err()
}
