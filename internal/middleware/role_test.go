package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func roleContext(t *testing.T, role string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		c.Set("userRole", role)
	}
	return c, recorder
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	c, recorder := roleContext(t, "admin")

	RequireRole("admin")(c)

	if c.IsAborted() {
		t.Fatalf("expected the request to continue, got %d", recorder.Code)
	}
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	c, recorder := roleContext(t, "viewer")

	RequireRole("admin")(c)

	if !c.IsAborted() || recorder.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden, got aborted=%v code=%d", c.IsAborted(), recorder.Code)
	}
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	c, recorder := roleContext(t, "")

	RequireRole("admin")(c)

	if !c.IsAborted() || recorder.Code != http.StatusForbidden {
		t.Fatalf("expected forbidden, got aborted=%v code=%d", c.IsAborted(), recorder.Code)
	}
}
