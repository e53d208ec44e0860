package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZetoOfficial/follow-diff/internal/models"
	"github.com/pkg/errors"
)

const indent = "    "

// ErrFormatNotImplemented возвращается для формата html.
var ErrFormatNotImplemented = errors.New("output format html is not implemented yet")

// Document описывает JSON файла с результатом сверки.
type Document struct {
	Followers       []string `json:"followers"`
	Friends         []string `json:"friends"`
	FollowEachOther []string `json:"followEachOther"`
	FollowedOnly    []string `json:"followedOnly"`
	FollowOnly      []string `json:"followOnly"`
}

func NewDocument(result *models.Result) Document {
	return Document{
		Followers:       result.Followers,
		Friends:         result.Friends,
		FollowEachOther: result.Mutual,
		FollowedOnly:    result.FollowersOnly,
		FollowOnly:      result.FriendsOnly,
	}
}

// Profiles входной файл для загрузки аватаров.
type Profiles struct {
	Followers []models.User `json:"followers"`
	Friends   []models.User `json:"friends"`
}

func outputName(dir, date string, n int) string {
	if n == 0 {
		return filepath.Join(dir, fmt.Sprintf("output-%s.json", date))
	}
	return filepath.Join(dir, fmt.Sprintf("output-%s_%d.json", date, n))
}

// createOutput создает первый свободный файл из output-<date>.json, output-<date>_1.json, ...
// Если файл успели создать между попытками, берется следующий номер.
func createOutput(dir string, now time.Time) (*os.File, string, error) {
	date := now.Format("2006-01-02")
	for n := 0; ; n++ {
		name := outputName(dir, date, n)
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return nil, "", errors.Wrapf(err, "create %s", name)
		}
		return f, name, nil
	}
}

// WriteResult записывает результат в dir и возвращает путь нового файла.
func WriteResult(dir string, result *models.Result, now time.Time) (string, error) {
	f, path, err := createOutput(dir, now)
	if err != nil {
		return "", err
	}
	if err := writeJSON(f, path, NewDocument(result)); err != nil {
		return "", err
	}
	return path, nil
}

// WriteProfiles записывает профили фолловеров и друзей для download-images.
func WriteProfiles(path string, profiles Profiles) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	return writeJSON(f, path, profiles)
}

func ReadProfiles(path string) (Profiles, error) {
	var profiles Profiles
	data, err := os.ReadFile(path)
	if err != nil {
		return profiles, errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, &profiles); err != nil {
		return profiles, errors.Wrapf(err, "parse %s", path)
	}
	return profiles, nil
}

func writeJSON(f *os.File, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", indent)
	if err != nil {
		f.Close()
		return errors.Wrap(err, "marshal json")
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
