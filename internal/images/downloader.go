package images

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ZetoOfficial/follow-diff/internal/export"
	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
}

type Stats struct {
	Attempted int
	Saved     int
	Skipped   int
}

// Downloader сохраняет аватары пользователей по одному файлу за раз.
type Downloader struct {
	Client    *http.Client
	OutputDir string
}

func NewDownloader(outputDir string) *Downloader {
	return &Downloader{
		Client:    &http.Client{},
		OutputDir: outputDir,
	}
}

// Queue объединяет фолловеров и друзей по screen_name, первое вхождение побеждает.
func Queue(profiles export.Profiles) []models.User {
	seen := make(map[string]struct{}, len(profiles.Followers)+len(profiles.Friends))
	queue := make([]models.User, 0, len(profiles.Followers)+len(profiles.Friends))
	for _, list := range [][]models.User{profiles.Followers, profiles.Friends} {
		for _, u := range list {
			if _, ok := seen[u.ScreenName]; ok {
				continue
			}
			seen[u.ScreenName] = struct{}{}
			queue = append(queue, u)
		}
	}
	return queue
}

func (d *Downloader) Run(ctx context.Context, profiles export.Profiles) (Stats, error) {
	var stats Stats
	for i, user := range Queue(profiles) {
		if err := ctx.Err(); err != nil {
			return stats, errors.Wrap(err, "download images")
		}
		stats.Attempted++
		logrus.Infof("[%d] download %s", i, user.ProfileImageURL)

		saved, err := d.download(ctx, user)
		if err != nil {
			return stats, err
		}
		if saved {
			stats.Saved++
		} else {
			stats.Skipped++
		}
	}
	return stats, nil
}

// download возвращает false, если изображение пропущено. Ошибка возвращается только при записи файла.
func (d *Downloader) download(ctx context.Context, user models.User) (bool, error) {
	log := logrus.WithFields(logrus.Fields{
		"screen_name": user.ScreenName,
		"url":         user.ProfileImageURL,
	})
	if user.ProfileImageURL == "" {
		log.Warn("profile image url is empty")
		return false, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, user.ProfileImageURL, nil)
	if err != nil {
		log.WithField("error", err).Warn("create request")
		return false, nil
	}
	resp, err := d.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, errors.Wrap(ctx.Err(), "download images")
		}
		log.WithField("error", err).Warn("download failed")
		return false, nil
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Warnf("close body: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.WithField("status_code", resp.StatusCode).Warn("download failed")
		return false, nil
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	ext, ok := extensions[mediaType]
	if !ok {
		log.Warnf("Unsupported content-type: %s", contentType)
		return false, nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithField("error", err).Warn("read body")
		return false, nil
	}

	filename := filepath.Join(d.OutputDir, user.ScreenName+"."+ext)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return false, errors.Wrapf(err, "save %s", filename)
	}
	log.Infof("%s saved.", filename)
	return true, nil
}
