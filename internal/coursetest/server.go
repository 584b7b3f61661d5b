// Package coursetest runs an in-process stand-in for the remote course
// service, for tests of the client packages.
package coursetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"course-catalog-go/internal/model"
	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	user         model.User
	passwordHash []byte
}

type course struct {
	fields   model.CourseFields
	id       string
	enrolled map[string]bool
}

type failure struct {
	status  int
	message string
	raw     string
}

type Server struct {
	httpServer *httptest.Server
	jwtKey     string

	mu        sync.Mutex
	accounts  map[string]*account
	federated map[string]model.User
	courses   []*course
	failures  map[string]failure
	requests  []Request
}

// NewServer starts the fake service. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		jwtKey:    "coursetest-secret",
		accounts:  make(map[string]*account),
		federated: make(map[string]model.User),
		failures:  make(map[string]failure),
	}

	router := mux.NewRouter()
	router.Use(s.record)

	router.HandleFunc("/login", s.login).Methods("POST")
	router.HandleFunc("/signup", s.signup).Methods("POST")
	router.HandleFunc("/auth/google", s.googleLogin).Methods("POST")
	router.HandleFunc("/courses", s.authenticate(s.listCourses)).Methods("GET")
	router.HandleFunc("/courses", s.authenticate(s.createCourse)).Methods("POST")
	router.HandleFunc("/courses/{id}", s.authenticate(s.updateCourse)).Methods("PUT")
	router.HandleFunc("/courses/{id}", s.authenticate(s.deleteCourse)).Methods("DELETE")
	router.HandleFunc("/courses/{id}/enroll", s.authenticate(s.enroll)).Methods("POST")
	router.HandleFunc("/courses/{id}/unenroll", s.authenticate(s.unenroll)).Methods("POST")

	s.httpServer = httptest.NewServer(router)
	return s
}

func (s *Server) URL() string {
	return s.httpServer.URL
}

func (s *Server) Close() {
	s.httpServer.Close()
}

// AddUser registers a password account and returns its user.
func (s *Server) AddUser(email, password, name string) model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("hashing password: %v", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := model.User{ID: uuid.NewString(), Email: email, Name: name}
	s.accounts[strings.ToLower(email)] = &account{user: user, passwordHash: hash}
	return user
}

// AddFederatedIdentity makes credential exchangeable for user.
func (s *Server) AddFederatedIdentity(credential string, user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.federated[credential] = user
}

// AddCourse seeds a course, optionally with viewers already enrolled.
func (s *Server) AddCourse(fields model.CourseFields, enrolledUserIDs ...string) model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &course{fields: fields, id: uuid.NewString(), enrolled: make(map[string]bool)}
	for _, id := range enrolledUserIDs {
		c.enrolled[id] = true
	}
	s.courses = append(s.courses, c)
	return c.view("")
}

// Courses returns the stored collection as seen by viewer.
func (s *Server) Courses(viewer string) []model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	courses := make([]model.Course, 0, len(s.courses))
	for _, c := range s.courses {
		courses = append(courses, c.view(viewer))
	}
	return courses
}

// FailNext makes the next request to route (e.g. "PUT /courses/{id}")
// answer with status and a JSON error message.
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] = failure{status: status, message: message}
}

// FailNextRaw is FailNext with a verbatim response body.
func (s *Server) FailNextRaw(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures[route] = failure{status: status, raw: body}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Request(nil), s.requests...)
}

func (c *course) view(viewer string) model.Course {
	return model.Course{
		ID:            c.id,
		Title:         c.fields.Title,
		Description:   c.fields.Description,
		Instructor:    c.fields.Instructor,
		Semester:      c.fields.Semester,
		CourseCode:    c.fields.CourseCode,
		Credits:       c.fields.Credits,
		Prerequisites: c.fields.Prerequisites,
		EnrolledCount: len(c.enrolled),
		IsEnrolled:    viewer != "" && c.enrolled[viewer],
	}
}

func (s *Server) issueToken(user model.User) (string, error) {
	claims := JWTClaims{
		Email: user.Email,
		StandardClaims: jwt.StandardClaims{
			Subject:   user.ID,
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtKey))
}

func (s *Server) respondWithSession(w http.ResponseWriter, status int, user model.User) {
	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, status, AuthResponse{AccessToken: token, User: user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var request CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(request.Email)]
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(request.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	s.respondWithSession(w, http.StatusOK, acct.user)
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var request CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if request.Email == "" || request.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	_, exists := s.accounts[strings.ToLower(request.Email)]
	s.mu.Unlock()

	if exists {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}

	user := s.AddUser(request.Email, request.Password, "")
	s.respondWithSession(w, http.StatusCreated, user)
}

func (s *Server) googleLogin(w http.ResponseWriter, r *http.Request) {
	var request FederatedRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	user, ok := s.federated[request.Token]
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}

	s.respondWithSession(w, http.StatusOK, user)
}

func (s *Server) listCourses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Courses(viewerID(r)))
}

func decodeFields(r *http.Request) (model.CourseFields, string) {
	var fields model.CourseFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return fields, err.Error()
	}

	if fields.Title == "" || fields.Description == "" || fields.Instructor == "" ||
		fields.Semester == "" || fields.CourseCode == "" {
		return fields, "Missing required course fields"
	}
	if fields.Credits <= 0 {
		return fields, "Credits must be a positive integer"
	}

	return fields, ""
}

func (s *Server) createCourse(w http.ResponseWriter, r *http.Request) {
	fields, problem := decodeFields(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	created := s.AddCourse(fields)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) find(id string) (*course, int) {
	for i, c := range s.courses {
		if c.id == id {
			return c, i
		}
	}
	return nil, -1
}

func (s *Server) updateCourse(w http.ResponseWriter, r *http.Request) {
	fields, problem := decodeFields(r)
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, _ := s.find(mux.Vars(r)["id"])
	if c == nil {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}

	c.fields = fields
	writeJSON(w, http.StatusOK, c.view(viewerID(r)))
}

func (s *Server) deleteCourse(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, i := s.find(mux.Vars(r)["id"])
	if c == nil {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}

	s.courses = append(s.courses[:i], s.courses[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) enroll(w http.ResponseWriter, r *http.Request) {
	s.setEnrollment(w, r, true)
}

func (s *Server) unenroll(w http.ResponseWriter, r *http.Request) {
	s.setEnrollment(w, r, false)
}

func (s *Server) setEnrollment(w http.ResponseWriter, r *http.Request, enrolled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, _ := s.find(mux.Vars(r)["id"])
	if c == nil {
		writeError(w, http.StatusNotFound, "Course not found")
		return
	}

	viewer := viewerID(r)
	if c.enrolled[viewer] == enrolled {
		if enrolled {
			writeError(w, http.StatusConflict, "Already enrolled in this course")
		} else {
			writeError(w, http.StatusConflict, "Not enrolled in this course")
		}
		return
	}

	if enrolled {
		c.enrolled[viewer] = true
	} else {
		delete(c.enrolled, viewer)
	}

	writeJSON(w, http.StatusOK, c.view(viewer))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
