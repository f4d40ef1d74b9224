package submissions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wolfman30/landing-intake/internal/payments"
)

func TestComposeContact(t *testing.T) {
	n := composeContact(ContactSubmission{Name: "Ana", Email: "a@x.com", Message: "Hi"})

	assert.Equal(t, "New Contact Form Submission from Ana", n.Subject)
	assert.Contains(t, n.HTML, "<p><strong>Name:</strong> Ana</p>")
	assert.Contains(t, n.HTML, "<p><strong>Email:</strong> a@x.com</p>")
	assert.NotContains(t, n.HTML, "Phone")
	assert.Contains(t, n.HTML, "<p>Hi</p>")
}

func TestComposeIsDeterministic(t *testing.T) {
	sub := LeadSubmission{Name: "Ana", Email: "a@x.com", Phone: "555", Needs: "site", FormType: "quote", Company: "Acme"}
	assert.Equal(t, composeLead(sub), composeLead(sub))
}

func TestComposeEscapesUserInput(t *testing.T) {
	n := composeContact(ContactSubmission{
		Name:    `<script>alert("x")</script>`,
		Email:   "a@x.com",
		Phone:   "555 & 556",
		Message: "line one\n<b>line two</b>",
	})

	assert.NotContains(t, n.HTML, "<script>")
	assert.Contains(t, n.HTML, "&lt;script&gt;")
	assert.Contains(t, n.HTML, "555 &amp; 556")
	assert.Contains(t, n.HTML, "line one<br>\n&lt;b&gt;line two&lt;/b&gt;")
}

func TestComposeLeadVariants(t *testing.T) {
	quote := LeadSubmission{Name: "Ana", Email: "a@x.com", Phone: "555", Needs: "multi-page site", FormType: "quote"}
	n := composeLead(quote)
	assert.Equal(t, "New Quote Request from Ana", n.Subject)
	assert.Contains(t, n.HTML, "<h2>New Quote Request</h2>")
	assert.Contains(t, n.HTML, "quote request for a multi-page site")
	assert.NotContains(t, n.HTML, "Company")
	assert.NotContains(t, n.HTML, "Uploaded Files")

	purchase := quote
	purchase.FormType = "purchase"
	purchase.Website = "https://acme.dev"
	purchase.References = References{
		{ID: "uploads/1-a-logo.png", URL: "https://cdn.dev/uploads/1-a-logo.png"},
		{ID: "uploads/2-b-x.png", URL: "javascript:alert(1)"},
	}
	n = composeLead(purchase)
	assert.Equal(t, "New Purchase Request from Ana", n.Subject)
	assert.Contains(t, n.HTML, "<p><strong>Website:</strong> https://acme.dev</p>")
	assert.Contains(t, n.HTML, "<p><strong>Uploaded Files:</strong> 2 file(s)</p>")
	assert.Contains(t, n.HTML, `<a href="https://cdn.dev/uploads/1-a-logo.png">uploads/1-a-logo.png</a>`)
	assert.Contains(t, n.HTML, "<li>uploads/2-b-x.png</li>")
	assert.NotContains(t, n.HTML, "javascript:")
	assert.Contains(t, n.HTML, "single-page landing page ($199)")
}

func TestComposePurchase(t *testing.T) {
	sub := PurchaseSubmission{
		Amount:   19900,
		FormData: &PurchaseForm{Name: "Ana", Email: "a@x.com", Phone: "555", Needs: "site", Location: "Austin"},
	}
	order := &payments.Order{ProviderID: "PAY-1", OrderNumber: "LP-1700000000000-AB12Z"}

	n := composePurchase(sub, order)
	assert.Equal(t, "New Purchase Request - LP-1700000000000-AB12Z", n.Subject)
	assert.Contains(t, n.HTML, "(Pending Payment)")
	assert.Contains(t, n.HTML, "<p><strong>Amount:</strong> $199.00</p>")
	assert.Contains(t, n.HTML, "<p><strong>PayPal Order ID:</strong> PAY-1</p>")
	assert.Contains(t, n.HTML, "<p><strong>Location:</strong> Austin</p>")
	assert.False(t, strings.Contains(n.HTML, "Company"))
}
