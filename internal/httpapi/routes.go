package httpapi

import "net/http"

// Handler assembles the route table and middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Tasks. There is deliberately no task delete: tasks are closed by
	// completing them, never removed.
	mux.HandleFunc("POST /api/tasks", s.createTask)
	mux.HandleFunc("GET /api/tasks", s.listTasks)
	mux.HandleFunc("GET /api/tasks/{id}", s.getTask)
	mux.HandleFunc("PUT /api/tasks/{id}", s.updateTask)
	mux.HandleFunc("PATCH /api/tasks/{id}/status", s.updateTaskStatus)
	mux.HandleFunc("PUT /api/tasks/{id}/alert", s.setTaskAlert)
	mux.HandleFunc("DELETE /api/tasks/{id}/alert", s.clearTaskAlert)
	mux.HandleFunc("POST /api/tasks/{id}/calendar", s.pushTaskToCalendar)

	// Clients.
	mux.HandleFunc("POST /api/clients", s.createClient)
	mux.HandleFunc("GET /api/clients", s.listClients)
	mux.HandleFunc("GET /api/clients/{id}", s.getClient)
	mux.HandleFunc("PUT /api/clients/{id}", s.updateClient)
	mux.HandleFunc("DELETE /api/clients/{id}", s.deleteClient)

	// Invoices.
	mux.HandleFunc("POST /api/invoices", s.createInvoice)
	mux.HandleFunc("GET /api/invoices", s.listInvoices)
	mux.HandleFunc("GET /api/invoices/{id}", s.getInvoice)
	mux.HandleFunc("PUT /api/invoices/{id}", s.updateInvoice)
	mux.HandleFunc("POST /api/invoices/{id}/pay", s.payInvoice)

	// Notifications.
	mux.HandleFunc("GET /api/notifications", s.getNotifications)
	mux.HandleFunc("POST /api/notifications/refresh", s.refreshNotifications)
	mux.HandleFunc("POST /api/notifications/ack", s.acknowledgeNotifications)

	// Email digest.
	mux.HandleFunc("POST /api/digest/send", s.sendDigest)

	// Assistant and AI flows.
	mux.HandleFunc("POST /api/assistant/messages", s.assistantMessage)
	mux.HandleFunc("POST /api/assistant/reset", s.assistantReset)
	mux.HandleFunc("POST /api/content/suggestions", s.suggestContent)
	mux.HandleFunc("GET /api/tools/upcoming-tasks", s.upcomingTasks)

	var handler http.Handler = mux
	handler = loggingMiddleware(s.log, handler)
	handler = requestIDMiddleware(handler)
	return handler
}
