package mail

import (
	"fmt"
	"strings"
	"time"

	"user-management-service/internal/usecase/user"
)

const verificationSubject = "Verify your email"

func verificationBody(msg user.VerificationEmail) string {
	var b strings.Builder

	name := msg.Name
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	b.WriteString("Please verify your email by opening this link:\n\n")
	fmt.Fprintf(&b, "%s\n\n", msg.Link)
	if !msg.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "The link expires at %s.\n", msg.ExpiresAt.UTC().Format(time.RFC1123))
	}

	return b.String()
}
