// Package digest composes and sends the upcoming-task email digest.
package digest

import (
	"bytes"
	"fmt"
	"io"
	"net/smtp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/amestudio/agencydesk/internal/model"
)

// noClientPlaceholder substitutes a missing denormalized client name.
const noClientPlaceholder = "Sin cliente"

// dueDateLayout renders due dates as dd/MM/yyyy.
const dueDateLayout = "02/01/2006"

// Build composes an RFC 5322 plain-text message listing the given
// tasks, ordered as provided.
func Build(from string, to []string, tasks []model.Task, now time.Time) ([]byte, error) {
	if from == "" {
		return nil, fmt.Errorf("digest sender must be set")
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("digest must have at least one recipient")
	}

	fromAddrs := []*mail.Address{{Name: "AgencyDesk", Address: from}}
	toAddrs := make([]*mail.Address, 0, len(to))
	for _, addr := range to {
		toAddrs = append(toAddrs, &mail.Address{Address: addr})
	}

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", fromAddrs)
	h.SetAddressList("To", toAddrs)
	h.SetSubject(fmt.Sprintf("Tareas próximas %s", now.Format(dueDateLayout)))
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}

	if _, err := io.WriteString(w, renderBody(tasks)); err != nil {
		w.Close()
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}

	return buf.Bytes(), nil
}

// renderBody formats the task list as plain text, one line per task.
func renderBody(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "No hay tareas próximas en los próximos días.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d tarea(s) próxima(s):\n\n", len(tasks)))

	for _, t := range tasks {
		clientName := noClientPlaceholder
		if t.ClientName != nil && *t.ClientName != "" {
			clientName = *t.ClientName
		}
		sb.WriteString(fmt.Sprintf(
			"- %s (%s) vence %s\n",
			t.Name, clientName, t.DueDate.Format(dueDateLayout),
		))
	}

	return sb.String()
}

// Send ships the message through the given SMTP server. Attempt-once,
// like every outbound call in this application.
func Send(smtpAddr, from string, to []string, msg []byte) error {
	if smtpAddr == "" {
		return fmt.Errorf("smtp address must be set")
	}
	if err := smtp.SendMail(smtpAddr, nil, from, to, msg); err != nil {
		return fmt.Errorf("sending digest via %s: %w", smtpAddr, err)
	}
	return nil
}
