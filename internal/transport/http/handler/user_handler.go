package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-social-graph/internal/core/auth"
	"go-gin-social-graph/internal/domain"
	"go-gin-social-graph/internal/service"
	"go-gin-social-graph/internal/transport/http/ez"
	"go-gin-social-graph/internal/transport/http/middleware"
)

// UserHandler mounts the /users routes: identity, profile and follow graph.
type UserHandler struct {
	auth   *service.AuthService
	users  *service.UserService
	social *service.SocialService
}

func NewUserHandler(a *service.AuthService, u *service.UserService, s *service.SocialService) *UserHandler {
	return &UserHandler{auth: a, users: u, social: s}
}

func (h *UserHandler) Priority() int { return 10 }

type registerIn struct {
	FirstName string `json:"first_name" binding:"max=64"`
	LastName  string `json:"last_name"  binding:"max=64"`
	Age       int    `json:"age"        binding:"gte=0,lte=150"`
	Country   string `json:"country"    binding:"max=64"`
	Email     string `json:"email"      binding:"required,email,max=254"`
	Password  string `json:"password"   binding:"required,min=6,max=72"`
	RoleID    uint   `json:"role_id"`
	Img       string `json:"img"        binding:"max=512"`
}

type loginIn struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateIn struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=64"`
	Age       *int    `json:"age"        binding:"omitempty,gte=0,lte=150"`
	Country   *string `json:"country"    binding:"omitempty,max=64"`
	Email     *string `json:"email"      binding:"omitempty,email,max=254"`
	Password  *string `json:"password"   binding:"omitempty,min=6,max=72"`
	Img       *string `json:"img"        binding:"omitempty,max=512"`
}

type none struct{}

func (h *UserHandler) Mount(root ez.EZ) {
	e := root.Group("/users")

	ez.RegisterAction(e, ez.Action[registerIn, *domain.User]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: "user registered",
		Handler: func(c *gin.Context, in *registerIn) (*domain.User, error) {
			return h.auth.Register(c.Request.Context(), service.RegisterInput{
				FirstName: strings.TrimSpace(in.FirstName),
				LastName:  strings.TrimSpace(in.LastName),
				Age:       in.Age,
				Country:   strings.TrimSpace(in.Country),
				Email:     in.Email,
				Password:  in.Password,
				RoleID:    in.RoleID,
				Img:       in.Img,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[loginIn, *service.LoginResult]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: "logged in",
		Handler: func(c *gin.Context, in *loginIn) (*service.LoginResult, error) {
			return h.auth.Login(c.Request.Context(), in.Email, in.Password)
		},
	})

	ez.RegisterAction(e, ez.Action[none, gin.H]{
		Method:  http.MethodPost,
		Path:    "/follow/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Status:  http.StatusCreated,
		Message: "followed",
		Handler: func(c *gin.Context, _ *none) (gin.H, error) {
			p, target, err := actorAndTarget(c)
			if err != nil {
				return nil, err
			}
			if p.UserID == target {
				return nil, domain.ErrSelfFollow
			}
			if err := h.social.Follow(c.Request.Context(), p.UserID, target); err != nil {
				return nil, err
			}
			return gin.H{"following_user_id": p.UserID, "followed_user_id": target}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[none, gin.H]{
		Method:  http.MethodPost,
		Path:    "/unfollow/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "unfollowed",
		Handler: func(c *gin.Context, _ *none) (gin.H, error) {
			p, target, err := actorAndTarget(c)
			if err != nil {
				return nil, err
			}
			if err := h.social.Unfollow(c.Request.Context(), p.UserID, target); err != nil {
				return nil, err
			}
			return gin.H{"following_user_id": p.UserID, "followed_user_id": target}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.UserSummary]{
		Method: http.MethodGet,
		Path:   "/followers/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) ([]domain.UserSummary, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.social.ListFollowers(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.UserSummary]{
		Method: http.MethodGet,
		Path:   "/following/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) ([]domain.UserSummary, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.social.ListFollowing(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.User]{
		Method: http.MethodGet,
		Path:   "/search/:name",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) ([]domain.User, error) {
			name := strings.TrimSpace(c.Param("name"))
			if name == "" {
				return nil, ez.BadRequest("empty name")
			}
			return h.users.Search(c.Request.Context(), name)
		},
	})

	ez.RegisterAction(e, ez.Action[none, []domain.User]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Roles:  []domain.Role{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *none) ([]domain.User, error) {
			return h.users.List(c.Request.Context())
		},
	})

	ez.RegisterAction(e, ez.Action[none, *domain.Profile]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (*domain.Profile, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.users.Profile(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[updateIn, *domain.User]{
		Method:  http.MethodPut,
		Path:    "/:id",
		Binder:  ez.BindJSON,
		Auth:    true,
		Message: "user updated",
		Handler: func(c *gin.Context, in *updateIn) (*domain.User, error) {
			p, id, err := actorAndTarget(c)
			if err != nil {
				return nil, err
			}
			return h.users.Update(c.Request.Context(), p, id, service.UpdateInput{
				FirstName: in.FirstName,
				LastName:  in.LastName,
				Age:       in.Age,
				Country:   in.Country,
				Email:     in.Email,
				Password:  in.Password,
				Img:       in.Img,
			})
		},
	})

	ez.RegisterAction(e, ez.Action[none, gin.H]{
		Method:  http.MethodDelete,
		Path:    "/:id",
		Binder:  ez.BindNone,
		Auth:    true,
		Message: "user deleted",
		Handler: func(c *gin.Context, _ *none) (gin.H, error) {
			p, id, err := actorAndTarget(c)
			if err != nil {
				return nil, err
			}
			if err := h.users.Delete(c.Request.Context(), p, id); err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
}

// actorAndTarget returns the caller and the :id path parameter.
func actorAndTarget(c *gin.Context) (*auth.Principal, uint, error) {
	p, ok := middleware.PrincipalOf(c)
	if !ok {
		return nil, 0, domain.ErrUnauthenticated
	}
	id, err := ez.ParamID(c, "id")
	if err != nil {
		return nil, 0, err
	}
	return p, id, nil
}
