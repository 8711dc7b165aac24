package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the keypad pages at / and /keypad, and the JSON
// API under the /calculator prefix.
func (s *Service) RegisterRoutes(r chi.Router) {
	r.Get("/", s.Home)

	r.Route("/keypad", func(r chi.Router) {
		r.Get("/{id}", s.Keypad)
		r.Post("/{id}", s.KeypadPress)
	})

	r.Route("/calculator", func(r chi.Router) {
		r.Post("/sessions", s.CreateSession)
		r.Get("/sessions/{id}", s.GetSession)
		r.Delete("/sessions/{id}", s.DeleteSession)
		r.Post("/sessions/{id}/keys", s.PressKeys)
		r.Post("/replay", s.Replay)
	})
}
