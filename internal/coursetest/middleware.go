package coursetest

import (
	"context"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
)

type contextKey int

const userIDKey contextKey = iota

func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenHeader := r.Header.Get("Authorization")
		if tokenHeader == "" {
			writeError(w, http.StatusUnauthorized, "Missing token")
			return
		}

		splitToken := strings.Split(tokenHeader, "Bearer ")
		if len(splitToken) != 2 {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		requestToken := splitToken[1]

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(requestToken, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.jwtKey), nil
		})

		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		next(w, r.WithContext(ctx))
	}
}

// record logs every matched request and answers with an injected failure
// when one is queued for the route.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Route:         route,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		key := r.Method + " " + route
		injected, ok := s.failures[key]
		if ok {
			delete(s.failures, key)
		}
		s.mu.Unlock()

		if ok {
			if injected.raw != "" {
				w.WriteHeader(injected.status)
				_, _ = w.Write([]byte(injected.raw))
				return
			}
			writeError(w, injected.status, injected.message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func viewerID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
