package ui

import (
	"github.com/desertthunder/shelf/internal/models"
	"github.com/desertthunder/shelf/internal/tasks"
)

type libraryLoadedMsg struct {
	result *tasks.LibraryResult
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

// detail messages carry the detail generation so results for a closed view are dropped.

type favoriteMountedMsg struct {
	gen uint64
	err error
}

type favoriteToggledMsg struct {
	gen      uint64
	favorite bool
	err      error
}

type reviewsLoadedMsg struct {
	gen     uint64
	reviews []models.Review
	err     error
}

type averageMsg struct {
	gen uint64
	avg models.ReviewAverage
}
