package version

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Значения подставляются при сборке через -ldflags "-X".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Build описывает сборку бинарника.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Current возвращает данные текущей сборки.
func Current() Build {
	return Build{Version: version, Commit: commit, Date: date}
}

// IsRelease сообщает, что бинарник собран с явной версией, а не из рабочей копии.
func (b Build) IsRelease() bool {
	return b.Version != "" && b.Version != "dev"
}

// Fields возвращает поля сборки для логов.
func (b Build) Fields() log.Fields {
	return log.Fields{
		"version": b.Version,
		"commit":  b.Commit,
		"built":   b.Date,
	}
}

func (b Build) String() string {
	return fmt.Sprintf("commerce %s (commit %s, built %s)", b.Version, b.Commit, b.Date)
}

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает commit, из которого собран бинарник.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }
