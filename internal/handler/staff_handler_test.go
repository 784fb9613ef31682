package handler

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"workshopportal/internal/entity"
)

func TestDeleteUser_RevokesSessions(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)
	app.api.users = []entity.User{{ID: 12, Username: "mallory", Role: entity.RoleStudent}}

	rec := app.post("/manage-users/delete", url.Values{"id": {"12"}, "username": {"mallory"}})

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/manage-users" {
		t.Errorf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(app.api.deletedUsers) != 1 || app.api.deletedUsers[0] != "12" {
		t.Errorf("deleted = %v, want [12]", app.api.deletedUsers)
	}
	if len(app.sessions.revoked) != 1 || app.sessions.revoked[0] != "mallory" {
		t.Errorf("revoked = %v, want [mallory]", app.sessions.revoked)
	}
}

func TestDeleteUser_CannotDeleteSelf(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)

	app.post("/manage-users/delete", url.Values{"username": {"root"}})

	if len(app.api.deletedUsers) != 0 {
		t.Error("admin deleted their own account")
	}
}

func TestUpdateUser_RoleChangeRevokesSessions(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)
	app.api.users = []entity.User{{ID: 3, Username: "trent", Email: "t@example.com", Role: entity.RoleStudent}}

	app.post("/manage-users/update", url.Values{"id": {"3"}, "username": {"trent"}, "role": {"faculty"}})

	if len(app.api.updates) != 1 || app.api.updates[0].Role != entity.RoleFaculty {
		t.Fatalf("updates = %+v", app.api.updates)
	}
	if len(app.sessions.revoked) != 1 || app.sessions.revoked[0] != "trent" {
		t.Errorf("revoked = %v, want [trent]", app.sessions.revoked)
	}
}

func TestFacultyManagement_ListsOnlyFaculty(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)
	app.api.users = []entity.User{
		{ID: 1, Username: "prof-x", Role: entity.RoleFaculty},
		{ID: 2, Username: "kid-y", Role: entity.RoleStudent},
	}

	body := app.get("/faculty-management").Body.String()

	if !strings.Contains(body, "prof-x") || strings.Contains(body, "kid-y") {
		t.Error("faculty management should list faculty only")
	}
}

func TestFacultyUsers_CannotPromoteToAdmin(t *testing.T) {
	app := newTestApp(t)
	app.signIn("prof", entity.RoleFaculty)
	app.api.users = []entity.User{{ID: 2, Username: "kid", Role: entity.RoleStudent}}

	app.post("/faculty-view-users/update", url.Values{"username": {"kid"}, "role": {"admin"}})

	if len(app.api.updates) != 0 {
		t.Errorf("faculty changed a role to admin: %+v", app.api.updates)
	}
}

func TestFacultyUsers_CannotDeleteAdmin(t *testing.T) {
	app := newTestApp(t)
	app.signIn("prof", entity.RoleFaculty)
	app.api.users = []entity.User{{ID: 1, Username: "root", Role: entity.RoleAdmin}}

	rec := app.post("/faculty-view-users/delete", url.Values{"id": {"1"}, "username": {"root"}})

	if rec.Header().Get("Location") != "/faculty-view-users" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
	if len(app.api.deletedUsers) != 0 {
		t.Errorf("faculty deleted an admin: %v", app.api.deletedUsers)
	}
	if len(app.sessions.revoked) != 0 {
		t.Errorf("admin sessions revoked: %v", app.sessions.revoked)
	}
	if !hasFlash(rec) {
		t.Error("expected an error flash")
	}
}

func TestFacultyUsers_CannotDemoteAdmin(t *testing.T) {
	app := newTestApp(t)
	app.signIn("prof", entity.RoleFaculty)
	app.api.users = []entity.User{{ID: 1, Username: "root", Role: entity.RoleAdmin}}

	app.post("/faculty-view-users/update", url.Values{"id": {"1"}, "username": {"root"}, "role": {"student"}})

	if len(app.api.updates) != 0 {
		t.Errorf("faculty demoted an admin: %+v", app.api.updates)
	}
	if len(app.sessions.revoked) != 0 {
		t.Errorf("admin sessions revoked: %v", app.sessions.revoked)
	}
}

func TestFacultyUsers_CanDeleteStudent(t *testing.T) {
	app := newTestApp(t)
	app.signIn("prof", entity.RoleFaculty)
	app.api.users = []entity.User{{ID: 2, Username: "kid", Role: entity.RoleStudent}}

	app.post("/faculty-view-users/delete", url.Values{"id": {"2"}, "username": {"kid"}})

	if len(app.api.deletedUsers) != 1 || app.api.deletedUsers[0] != "2" {
		t.Errorf("deleted = %v, want [2]", app.api.deletedUsers)
	}
}

func TestAttendanceSubmit_PostsEveryParticipant(t *testing.T) {
	app := newTestApp(t)
	app.signIn("prof", entity.RoleFaculty)

	rec := app.post("/faculty-attendance", url.Values{
		"workshop":    {"5"},
		"participant": {"ann", "ben", "cat"},
		"absent":      {"ben"},
	})

	if got := rec.Header().Get("Location"); got != "/faculty-attendance?workshop=5" {
		t.Errorf("Location = %q", got)
	}
	if len(app.api.marks) != 3 {
		t.Fatalf("marks = %+v, want 3", app.api.marks)
	}
	present := map[string]bool{}
	for _, m := range app.api.marks {
		if m.WorkshopID != 5 {
			t.Errorf("mark for workshop %d", m.WorkshopID)
		}
		present[m.Username] = m.IsPresent
	}
	if !present["ann"] || present["ben"] || !present["cat"] {
		t.Errorf("presence = %v", present)
	}
}

func TestAttendanceMarks_SkipsDuplicatesAndBlanks(t *testing.T) {
	marks := attendanceMarks(1, []string{"a", "", "a", "b"}, nil)
	if len(marks) != 2 {
		t.Errorf("marks = %+v, want 2", marks)
	}
}

func TestAdminDashboard_ShowsCounts(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)
	app.api.users = []entity.User{{Username: "a"}, {Username: "b"}, {Username: "c"}}
	app.api.workshops = []entity.Workshop{{ID: 1, Name: "Go"}}
	app.sessions.active = map[entity.Role]int{entity.RoleStudent: 4, entity.RoleAdmin: 1}

	rec := app.get("/admin-dashboard")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`<p class="stat-value">3</p>`,
		`<p class="stat-value">1</p>`,
		`<p class="stat-value">5</p>`,
		"student: 4",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestViewMaterial_RendersMarkdownWithoutRawHTML(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)
	app.api.workshops = []entity.Workshop{{
		ID:          4,
		Name:        "Testing",
		Description: "**bold** <script>alert(1)</script>",
		Material:    "slides.pdf",
	}}

	rec := app.get("/view-material/4")

	body := rec.Body.String()
	if !strings.Contains(body, "<strong>bold</strong>") {
		t.Error("markdown not rendered")
	}
	if strings.Contains(body, "<script>") {
		t.Error("raw HTML passed through")
	}
	if !strings.Contains(body, "/api/workshops/materials/slides.pdf") {
		t.Error("material link missing")
	}
}

func TestViewMaterial_UnknownWorkshop(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)

	if rec := app.get("/view-material/404"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAddWorkshop_InvalidDate(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)

	rec := app.post("/add-workshop", url.Values{"name": {"Go"}, "date": {"soon"}, "time": {"10:00"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestAddWorkshop_Success(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)

	rec := app.post("/add-workshop", url.Values{"name": {"Go"}, "date": {"2026-05-01"}, "time": {"10:00"}})

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/view-workshops" {
		t.Errorf("got %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}
