package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/model"
	"github.com/foodgram-app/backend/internal/service"
	"github.com/foodgram-app/backend/internal/testhelpers"
)

// testEnv bundles the router and services wired against an in-memory
// database. The rate limiter stays off and images land in a temp dir.
type testEnv struct {
	Router        *gin.Engine
	DB            *gorm.DB
	AuthService   *service.AuthService
	RecipeService *service.RecipeService
	UserService   *service.UserService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)

	authService := service.NewAuthService(db, "test-secret")
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db)
	shoppingService := service.NewShoppingListService(db)
	imageService := service.NewImageService(t.TempDir(), nil)

	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	NewAuthHandler(authService).RegisterRoutes(apiGroup)
	NewUserHandler(userService, imageService, authService).RegisterRoutes(apiGroup)
	NewTagHandler(db).RegisterRoutes(apiGroup)
	NewIngredientHandler(db).RegisterRoutes(apiGroup)
	NewRecipeHandler(recipeService, userService, shoppingService, imageService, authService, nil, "https://food.example.org").RegisterRoutes(apiGroup)
	NewShortLinkHandler(recipeService).RegisterRoutes(router)

	return &testEnv{
		Router:        router,
		DB:            db,
		AuthService:   authService,
		RecipeService: recipeService,
		UserService:   userService,
	}
}

// createUserAndToken inserts a fixture user and signs a token for it.
func (env *testEnv) createUserAndToken(t *testing.T, username string) (*model.User, string) {
	t.Helper()

	user := testhelpers.CreateTestUser(t, env.DB, username)
	token, err := env.AuthService.GenerateToken(user)
	require.NoError(t, err)
	return user, token
}

// performRequest sends a JSON request through the router; pass an empty token
// for anonymous calls.
func performRequest(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
