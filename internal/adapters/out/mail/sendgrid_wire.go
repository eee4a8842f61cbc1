package mail

import "log"

// NewStorefrontMailerFromConfig picks SendGrid when an API key is present and
// falls back to LogClient otherwise.
func NewStorefrontMailerFromConfig(apiKey, from, baseURL string, links LinkIssuer) *StorefrontMailer {
	var client EmailClient
	if apiKey == "" {
		log.Printf("[mail] WARN: SENDGRID_API_KEY is empty. mails are logged, not sent.")
		client = LogClient{}
	} else {
		client = NewSendGridClient(apiKey, "Cosmetica")
	}
	if from == "" {
		from = "no-reply@cosmetica.local"
		log.Printf("[mail] INFO: SENDGRID_FROM is empty. default=%s", from)
	}

	m := NewStorefrontMailer(client, from, baseURL, links)
	log.Printf("[mail] StorefrontMailer initialized. from=%s baseURL=%s", from, m.baseURL)
	return m
}
