package handler

import (
	"net/http"
	"time"

	"workshopportal/internal/backend"
	"workshopportal/internal/entity"
	"workshopportal/internal/guard"
	"workshopportal/internal/middleware"
	"workshopportal/internal/session"
)

// Deps is everything the screens need.
type Deps struct {
	Store    session.Store
	API      *backend.Client
	Sessions SessionAdmin
	Attempts AttemptLog
	Captcha  Challenge
	View     *Renderer
	Now      func() time.Time
}

// Route binds a mux pattern to the role allowed to reach it. guard.Public
// marks screens open to everyone.
type Route struct {
	Pattern string
	Role    entity.Role
	Handler http.HandlerFunc
}

// Routes is the portal's route table.
func Routes(d Deps) []Route {
	login := NewLoginHandler(d.Store, d.API, d.Attempts, d.Captcha, d.View)
	signup := NewRegistrationHandler(d.API, d.View)
	password := NewPasswordHandler(d.API, d.View)
	settings := NewSettingsHandler(d.API, d.View)
	dashboards := NewDashboardHandler(d.API, d.Sessions, d.Attempts, d.View, d.Now)
	studentScreens := NewStudentHandler(d.API, d.View, d.Now)

	adminWorkshops := NewWorkshopHandler(d.API, d.View, WorkshopPaths{
		List:     "/view-workshops",
		Add:      "/add-workshop",
		Edit:     "/update-workshop",
		Delete:   "/view-workshops/delete",
		Material: "/view-material",
	})
	facultyWorkshops := NewWorkshopHandler(d.API, d.View, WorkshopPaths{
		List:   "/faculty-view-workshops",
		Add:    "/faculty-view-workshops/add",
		Edit:   "/faculty-view-workshops/update",
		Delete: "/faculty-view-workshops/delete",
	})

	allUsers := NewUserHandler(d.API, d.Sessions, d.View, UserScope{
		Path:       "/manage-users",
		Heading:    "Manage Users",
		Assignable: entity.Roles,
	})
	facultyUsers := NewUserHandler(d.API, d.Sessions, d.View, UserScope{
		Path:       "/faculty-management",
		Heading:    "Faculty Management",
		Only:       entity.RoleFaculty,
		Assignable: []entity.Role{entity.RoleFaculty},
	})
	studentUsers := NewUserHandler(d.API, d.Sessions, d.View, UserScope{
		Path:       "/faculty-view-users",
		Heading:    "Students",
		Only:       entity.RoleStudent,
		Assignable: []entity.Role{entity.RoleStudent},
	})

	adminAttendance := NewAttendanceHandler(d.API, d.View, "/admin-attendance")
	facultyAttendance := NewAttendanceHandler(d.API, d.View, "/faculty-attendance")

	const (
		public  = guard.Public
		admin   = entity.RoleAdmin
		faculty = entity.RoleFaculty
		student = entity.RoleStudent
	)

	return []Route{
		{"GET /{$}", public, func(w http.ResponseWriter, r *http.Request) { redirect(w, r, "/login") }},
		{"GET /login", public, login.LoginPage},
		{"POST /login", public, login.Login},
		{"POST /logout", public, login.Logout},
		{"GET /signup", public, signup.RegisterPage},
		{"POST /signup", public, signup.Register},
		{"GET /forgot-password", public, password.ForgotPage},
		{"POST /forgot-password", public, password.Forgot},
		{"GET /reset-password", public, password.ResetPage},
		{"POST /reset-password", public, password.Reset},

		{"GET /student-dashboard", student, studentScreens.Dashboard},
		{"GET " + registrationPath, student, studentScreens.RegistrationPage},
		{"POST " + registrationPath, student, studentScreens.Registration},
		{"GET " + registeredPath, student, studentScreens.RegisteredPage},
		{"POST " + registeredPath + "/unregister", student, studentScreens.Unregister},
		{"GET /student-dashboard/student-attendance", student, studentScreens.Attendance},
		{"GET /student-dashboard/student-settings", student, settings.Page},
		{"POST /student-dashboard/student-settings", student, settings.Update},

		{"GET /faculty-dashboard", faculty, dashboards.Faculty},
		{"GET /faculty-view-users", faculty, studentUsers.List},
		{"POST /faculty-view-users/add", faculty, studentUsers.Add},
		{"POST /faculty-view-users/update", faculty, studentUsers.Update},
		{"POST /faculty-view-users/delete", faculty, studentUsers.Delete},
		{"GET /faculty-view-workshops", faculty, facultyWorkshops.List},
		{"GET /faculty-view-workshops/add", faculty, facultyWorkshops.AddPage},
		{"POST /faculty-view-workshops/add", faculty, facultyWorkshops.Add},
		{"GET /faculty-view-workshops/update", faculty, facultyWorkshops.EditPage},
		{"POST /faculty-view-workshops/update", faculty, facultyWorkshops.Edit},
		{"POST /faculty-view-workshops/delete", faculty, facultyWorkshops.Delete},
		{"GET /faculty-attendance", faculty, facultyAttendance.Page},
		{"POST /faculty-attendance", faculty, facultyAttendance.Submit},
		{"GET /faculty-settings", faculty, settings.Page},
		{"POST /faculty-settings", faculty, settings.Update},

		{"GET /admin-dashboard", admin, dashboards.Admin},
		{"GET /add-workshop", admin, adminWorkshops.AddPage},
		{"POST /add-workshop", admin, adminWorkshops.Add},
		{"GET /view-workshops", admin, adminWorkshops.List},
		{"POST /view-workshops/delete", admin, adminWorkshops.Delete},
		{"GET /update-workshop", admin, adminWorkshops.EditPage},
		{"POST /update-workshop", admin, adminWorkshops.Edit},
		{"GET /view-material/{id}", admin, adminWorkshops.Material},
		{"GET /manage-users", admin, allUsers.List},
		{"POST /manage-users/add", admin, allUsers.Add},
		{"POST /manage-users/update", admin, allUsers.Update},
		{"POST /manage-users/delete", admin, allUsers.Delete},
		{"GET /faculty-management", admin, facultyUsers.List},
		{"POST /faculty-management/add", admin, facultyUsers.Add},
		{"POST /faculty-management/update", admin, facultyUsers.Update},
		{"POST /faculty-management/delete", admin, facultyUsers.Delete},
		{"GET /admin-attendance", admin, adminAttendance.Page},
		{"POST /admin-attendance", admin, adminAttendance.Submit},
		{"GET /settings", admin, settings.Page},
		{"POST /settings", admin, settings.Update},
	}
}

// NewRouter mounts every route behind the route guard. Unknown paths get
// the not-found page.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	for _, rt := range Routes(d) {
		mux.Handle(rt.Pattern, middleware.RequireRole(d.Store, rt.Role)(rt.Handler))
	}
	mux.Handle("/", middleware.RequireRole(d.Store, guard.Public)(http.HandlerFunc(d.View.NotFound)))
	return mux
}
