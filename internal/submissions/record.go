package submissions

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/landing-intake/internal/payments"
)

// Kind discriminates the submission variants.
type Kind string

const (
	KindContact  Kind = "contact"
	KindLead     Kind = "lead"
	KindPurchase Kind = "purchase"
)

// Lead form types.
const (
	FormTypeQuote    = "quote"
	FormTypePurchase = "purchase"
)

// Record is a decoded submission that can check its own required fields.
type Record interface {
	Kind() Kind
	Validate() error
}

// ValidationError lists the required fields a submission is missing.
type ValidationError struct {
	Message string
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return fmt.Sprintf("submissions: missing %s", strings.Join(e.Missing, ", "))
	case len(e.Invalid) > 0:
		return fmt.Sprintf("submissions: invalid %s", strings.Join(e.Invalid, ", "))
	default:
		return "submissions: " + e.Message
	}
}

// Details is the structured payload returned alongside a 400.
func (e *ValidationError) Details() map[string][]string {
	details := map[string][]string{}
	if len(e.Missing) > 0 {
		details["missing"] = e.Missing
	}
	if len(e.Invalid) > 0 {
		details["invalid"] = e.Invalid
	}
	return details
}

// Reference is an uploaded attachment a submission points at.
type Reference struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// References accepts either bare storage keys or {id,url} objects.
type References []Reference

func (r *References) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("references must be an array: %w", err)
	}
	if raw == nil {
		*r = nil
		return nil
	}
	out := make(References, 0, len(raw))
	for _, item := range raw {
		var key string
		if err := json.Unmarshal(item, &key); err == nil {
			if key = strings.TrimSpace(key); key != "" {
				out = append(out, Reference{ID: key, URL: key})
			}
			continue
		}
		var ref Reference
		if err := json.Unmarshal(item, &ref); err != nil {
			return fmt.Errorf("references must hold strings or {id,url} objects: %w", err)
		}
		if ref.ID == "" && ref.URL == "" {
			continue
		}
		if ref.URL == "" {
			ref.URL = ref.ID
		}
		if ref.ID == "" {
			ref.ID = ref.URL
		}
		out = append(out, ref)
	}
	*r = out
	return nil
}

// IDs returns the storage keys in order.
func (r References) IDs() []string {
	ids := make([]string, 0, len(r))
	for _, ref := range r {
		ids = append(ids, ref.ID)
	}
	return ids
}

type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (ContactSubmission) Kind() Kind { return KindContact }

func (c ContactSubmission) Validate() error {
	missing := missingFields(
		"name", c.Name,
		"email", c.Email,
		"message", c.Message,
	)
	if len(missing) > 0 {
		return &ValidationError{Message: "Name, email, and message are required", Missing: missing}
	}
	return nil
}

type LeadSubmission struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Company    string     `json:"company"`
	Website    string     `json:"website"`
	Location   string     `json:"location"`
	Needs      string     `json:"needs"`
	References References `json:"references"`
	FormType   string     `json:"formType"`
}

func (LeadSubmission) Kind() Kind { return KindLead }

func (l LeadSubmission) Validate() error {
	missing := missingFields(
		"name", l.Name,
		"email", l.Email,
		"phone", l.Phone,
		"needs", l.Needs,
		"formType", l.FormType,
	)
	if len(missing) > 0 {
		return &ValidationError{Message: "Name, email, phone, needs, and formType are required", Missing: missing}
	}
	switch strings.TrimSpace(l.FormType) {
	case FormTypeQuote, FormTypePurchase:
		return nil
	default:
		return &ValidationError{Message: `formType must be "quote" or "purchase"`, Invalid: []string{"formType"}}
	}
}

// IsQuote reports whether the lead asks for a quote rather than a purchase.
func (l LeadSubmission) IsQuote() bool {
	return strings.TrimSpace(l.FormType) == FormTypeQuote
}

// PurchaseForm is the customer detail block of a purchase.
type PurchaseForm struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Company    string     `json:"company"`
	Website    string     `json:"website"`
	Location   string     `json:"location"`
	Needs      string     `json:"needs"`
	References References `json:"references"`
}

type PurchaseSubmission struct {
	Amount   payments.Amount `json:"amount"`
	FormData *PurchaseForm   `json:"formData"`

	amountErr error
}

// UnmarshalJSON records an unparseable amount for Validate instead of failing the decode.
func (p *PurchaseSubmission) UnmarshalJSON(b []byte) error {
	var wire struct {
		Amount   json.RawMessage `json:"amount"`
		FormData *PurchaseForm   `json:"formData"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	*p = PurchaseSubmission{FormData: wire.FormData}
	if len(wire.Amount) > 0 {
		p.amountErr = p.Amount.UnmarshalJSON(wire.Amount)
	}
	return nil
}

func (PurchaseSubmission) Kind() Kind { return KindPurchase }

func (p PurchaseSubmission) Validate() error {
	var missing, invalid []string
	switch {
	case p.amountErr != nil || p.Amount < 0 || p.Amount > payments.MaxAmount:
		invalid = append(invalid, "amount")
	case p.Amount == 0:
		missing = append(missing, "amount")
	}
	if p.FormData == nil {
		missing = append(missing, "formData")
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "Amount and formData are required", Missing: missing, Invalid: invalid}
	}
	if len(invalid) > 0 {
		return &ValidationError{Message: "Amount must be a positive dollar value with at most two decimal places", Invalid: invalid}
	}
	missing = missingFields(
		"formData.name", p.FormData.Name,
		"formData.email", p.FormData.Email,
		"formData.phone", p.FormData.Phone,
		"formData.needs", p.FormData.Needs,
	)
	if len(missing) > 0 {
		return &ValidationError{Message: "Name, email, phone, and needs are required", Missing: missing}
	}
	return nil
}

// Metadata snapshots the form for the payment provider's order record.
func (p PurchaseSubmission) Metadata() payments.Metadata {
	f := p.FormData
	return payments.Metadata{
		Name:       f.Name,
		Email:      f.Email,
		Phone:      f.Phone,
		Company:    f.Company,
		Website:    f.Website,
		Location:   f.Location,
		Needs:      f.Needs,
		References: f.References.IDs(),
	}
}

// missingFields takes name/value pairs and returns the names whose value is blank.
func missingFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}
