package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"workshopportal/internal/entity"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name     string
		page     int
		want     []int
		wantPage int
		prev     string
		next     string
	}{
		{"first", 1, []int{1, 2, 3, 4, 5}, 1, "", "/list?page=2&q=go"},
		{"last", 2, []int{6, 7}, 2, "/list?page=1&q=go", ""},
		{"past the end clamps", 9, []int{6, 7}, 2, "/list?page=1&q=go", ""},
		{"zero clamps", 0, []int{1, 2, 3, 4, 5}, 1, "", "/list?page=2&q=go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, p := paginate(items, tt.page, 5, "/list", "go")
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("items = %v, want %v", got, tt.want)
			}
			if p.Page != tt.wantPage || p.Pages != 2 {
				t.Errorf("page %d of %d, want %d of 2", p.Page, p.Pages, tt.wantPage)
			}
			if p.Prev != tt.prev || p.Next != tt.next {
				t.Errorf("prev %q next %q, want %q %q", p.Prev, p.Next, tt.prev, tt.next)
			}
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	got, p := paginate([]int(nil), 3, 5, "/list", "")
	if len(got) != 0 || p.Page != 1 || p.Pages != 1 || p.Prev != "" || p.Next != "" {
		t.Errorf("got %v %+v", got, p)
	}
}

func TestFilterWorkshops(t *testing.T) {
	list := []entity.Workshop{
		{ID: 1, Name: "Intro to Go", Instructor: "Pat"},
		{ID: 2, Name: "Rust Basics", Instructor: "Gopher Jo"},
		{ID: 3, Name: "SQL", Instructor: "Lee"},
	}

	got := filterWorkshops(list, "GO")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 2 {
		t.Errorf("filter GO = %+v", got)
	}
	if got := filterWorkshops(list, ""); len(got) != 3 {
		t.Errorf("empty query kept %d, want 3", len(got))
	}
	if got := filterWorkshops(list, "haskell"); len(got) != 0 {
		t.Errorf("no match kept %d", len(got))
	}
}

func TestWorkshopList_SearchesByQuery(t *testing.T) {
	app := newTestApp(t)
	app.signIn("root", entity.RoleAdmin)
	app.api.workshops = []entity.Workshop{
		{ID: 1, Name: "Intro to Go", Instructor: "Pat"},
		{ID: 2, Name: "SQL", Instructor: "Lee"},
	}

	rec := app.get("/view-workshops?q=sql")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Intro to Go") || !strings.Contains(body, "<td>SQL</td>") {
		t.Error("search did not filter the table")
	}
	if !strings.Contains(body, `value="sql"`) {
		t.Error("search box lost the query")
	}
}

func TestRegistrationPage_PagesFiveAtATime(t *testing.T) {
	app := newTestApp(t)
	app.signIn("sam", entity.RoleStudent)
	for i := range 7 {
		app.api.workshops = append(app.api.workshops, workshopAt(int64(i+1), fixedNow.Add(48*time.Hour)))
	}

	first := app.get(registrationPath)
	second := app.get(registrationPath + "?page=2")

	rows := func(body string) int { return strings.Count(body, `name="workshop_id"`) }
	if n := rows(first.Body.String()); n != 5 {
		t.Errorf("page 1 rows = %d, want 5", n)
	}
	if !strings.Contains(first.Body.String(), "Page 1 of 2") || !strings.Contains(first.Body.String(), "page=2") {
		t.Error("page 1 has no link to page 2")
	}
	if n := rows(second.Body.String()); n != 2 {
		t.Errorf("page 2 rows = %d, want 2", n)
	}
	if !strings.Contains(second.Body.String(), "Previous") {
		t.Error("page 2 has no previous link")
	}
}

func TestRegisteredPage_SearchesByQuery(t *testing.T) {
	app := newTestApp(t)
	app.signIn("sam", entity.RoleStudent)
	goWs := workshopAt(1, fixedNow.Add(48*time.Hour))
	goWs.Name = "Intro to Go"
	sqlWs := workshopAt(2, fixedNow.Add(48*time.Hour))
	sqlWs.Name = "SQL"
	app.api.registered = []entity.Workshop{goWs, sqlWs}

	rec := app.get(registeredPath + "?q=go")

	body := rec.Body.String()
	if !strings.Contains(body, "Intro to Go") || strings.Contains(body, "<td>SQL</td>") {
		t.Error("search did not filter registered workshops")
	}
}
