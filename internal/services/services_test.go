package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/types"
)

// testEnv bundles the db, logger and repos most service tests need.
type testEnv struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	tokenRepo    repos.UserTokenRepo
	roadmapRepo  repos.RoadmapRepo
	nodeRepo     repos.RoadmapNodeRepo
	progressRepo repos.UserProgressRepo
	commentRepo  repos.CommentRepo
	versionRepo  repos.RoadmapVersionRepo
	customRepo   repos.CustomRoadmapRepo
	customNodes  repos.CustomRoadmapNodeRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	return &testEnv{
		db:           db,
		log:          log,
		userRepo:     repos.NewUserRepo(db, log),
		tokenRepo:    repos.NewUserTokenRepo(db, log),
		roadmapRepo:  repos.NewRoadmapRepo(db, log),
		nodeRepo:     repos.NewRoadmapNodeRepo(db, log),
		progressRepo: repos.NewUserProgressRepo(db, log),
		commentRepo:  repos.NewCommentRepo(db, log),
		versionRepo:  repos.NewRoadmapVersionRepo(db, log),
		customRepo:   repos.NewCustomRoadmapRepo(db, log),
		customNodes:  repos.NewCustomRoadmapNodeRepo(db, log),
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A unique name keeps each test on its own in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Roadmap{},
		&types.RoadmapNode{},
		&types.UserProgress{},
		&types.Comment{},
		&types.RoadmapVersion{},
		&types.CustomRoadmap{},
		&types.CustomRoadmapNode{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func seedRoadmap(t *testing.T, db *gorm.DB, id, category, tags string, nodeCount int) *types.Roadmap {
	t.Helper()
	roadmap := &types.Roadmap{
		ID:          id,
		Title:       "Roadmap " + id,
		Description: "desc " + id,
		Category:    category,
		Difficulty:  "beginner",
		Tags:        tags,
	}
	if err := db.Create(roadmap).Error; err != nil {
		t.Fatalf("seed roadmap %s: %v", id, err)
	}
	for i := 0; i < nodeCount; i++ {
		node := &types.RoadmapNode{
			ID:          fmt.Sprintf("%s-node-%d", id, i),
			RoadmapID:   id,
			Title:       fmt.Sprintf("Node %d", i),
			Description: fmt.Sprintf("node desc %d", i),
			Links:       types.EncodeLinks(nil),
			Seq:         i,
		}
		if err := db.Create(node).Error; err != nil {
			t.Fatalf("seed node %d of %s: %v", i, id, err)
		}
	}
	return roadmap
}

func seedUser(t *testing.T, db *gorm.DB, username string, admin bool) *types.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		Avatar:   "default.jpg",
		IsAdmin:  admin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}
