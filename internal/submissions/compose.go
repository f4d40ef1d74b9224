package submissions

import (
	"fmt"
	"html"
	"strings"

	"github.com/wolfman30/landing-intake/internal/payments"
)

// Notification is a composed admin email.
type Notification struct {
	Subject string
	HTML    string
}

type htmlBody struct {
	b strings.Builder
}

func (h *htmlBody) heading(level int, text string) {
	fmt.Fprintf(&h.b, "<h%d>%s</h%d>\n", level, html.EscapeString(text), level)
}

func (h *htmlBody) field(label, value string) {
	fmt.Fprintf(&h.b, "<p><strong>%s:</strong> %s</p>\n", label, html.EscapeString(strings.TrimSpace(value)))
}

// optional renders a field only when value is not blank.
func (h *htmlBody) optional(label, value string) {
	if strings.TrimSpace(value) != "" {
		h.field(label, value)
	}
}

// block renders a labelled paragraph, keeping line breaks.
func (h *htmlBody) block(label, value string) {
	escaped := html.EscapeString(strings.TrimSpace(value))
	escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
	fmt.Fprintf(&h.b, "<p><strong>%s:</strong></p>\n<p>%s</p>\n", label, escaped)
}

func (h *htmlBody) raw(s string) {
	h.b.WriteString(s)
	h.b.WriteString("\n")
}

func (h *htmlBody) String() string {
	return h.b.String()
}

func composeContact(c ContactSubmission) Notification {
	var body htmlBody
	body.heading(2, "New Contact Form Submission")
	body.field("Name", c.Name)
	body.field("Email", c.Email)
	body.optional("Phone", c.Phone)
	body.block("Message", c.Message)
	return Notification{
		Subject: "New Contact Form Submission from " + strings.TrimSpace(c.Name),
		HTML:    body.String(),
	}
}

func composeLead(l LeadSubmission) Notification {
	title := "Purchase Request"
	if l.IsQuote() {
		title = "Quote Request"
	}

	var body htmlBody
	body.heading(2, "New "+title)
	body.field("Name", l.Name)
	body.field("Email", l.Email)
	body.field("Phone", l.Phone)
	body.optional("Company", l.Company)
	body.optional("Website", l.Website)
	body.optional("Location", l.Location)
	body.block("Needs", l.Needs)
	if n := len(l.References); n > 0 {
		body.field("Uploaded Files", fmt.Sprintf("%d file(s)", n))
		writeReferences(&body, l.References)
	}
	if l.IsQuote() {
		body.raw("<p><em>This is a quote request for a multi-page site.</em></p>")
	} else {
		body.raw("<p><em>This is a purchase request for a single-page landing page ($199).</em></p>")
	}
	return Notification{
		Subject: fmt.Sprintf("New %s from %s", title, strings.TrimSpace(l.Name)),
		HTML:    body.String(),
	}
}

func composePurchase(p PurchaseSubmission, order *payments.Order) Notification {
	f := p.FormData

	var body htmlBody
	body.heading(2, "New Purchase Request (Pending Payment)")
	body.field("Order Number", order.OrderNumber)
	body.field("Amount", "$"+p.Amount.String())
	body.field("PayPal Order ID", order.ProviderID)
	body.raw("<hr>")
	body.heading(3, "Customer Details:")
	body.field("Name", f.Name)
	body.field("Email", f.Email)
	body.field("Phone", f.Phone)
	body.optional("Company", f.Company)
	body.optional("Website", f.Website)
	body.optional("Location", f.Location)
	body.block("Needs", f.Needs)
	if n := len(f.References); n > 0 {
		body.field("Uploaded Files", fmt.Sprintf("%d file(s)", n))
		writeReferences(&body, f.References)
	}
	return Notification{
		Subject: "New Purchase Request - " + order.OrderNumber,
		HTML:    body.String(),
	}
}

func writeReferences(body *htmlBody, refs References) {
	body.raw("<ul>")
	for _, ref := range refs {
		id := html.EscapeString(ref.ID)
		lower := strings.ToLower(ref.URL)
		if strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://") {
			fmt.Fprintf(&body.b, "<li><a href=\"%s\">%s</a></li>\n", html.EscapeString(ref.URL), id)
			continue
		}
		fmt.Fprintf(&body.b, "<li>%s</li>\n", id)
	}
	body.raw("</ul>")
}
