package handlers

import "alfredoptarigan/exam-grader/internal/services"

// ClientSource hands out the orchestrator to use for one request.
type ClientSource interface {
	Client() *services.Orchestrator
}
