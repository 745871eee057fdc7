package fileHandlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

var mutex sync.Mutex

// HandleAvatarPicture crops the uploaded picture square, scales it to
// 256x256 webp through ffmpeg and stores it under a content-hash filename.
// Returns http.ErrMissingFile untouched when no picture was attached.
func HandleAvatarPicture(r *http.Request) (string, error) {
	picFormFile, _, err := r.FormFile("picture")
	if err != nil {
		return "", err
	}
	defer picFormFile.Close()

	inputBytes, err := io.ReadAll(picFormFile)
	if err != nil {
		return "", err
	}

	cmd := exec.Command(
		"ffmpeg",
		"-i", "pipe:0",
		"-vf", "crop=min(iw\\,ih):min(iw\\,ih):(iw-min(iw\\,ih))/2:(ih-min(iw\\,ih))/2,scale=256:256",
		"-vframes", "1",
		"-c:v", "libwebp",
		"-quality", "50",
		"-preset", "default",
		"-f", "webp",
		"pipe:1",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", err
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	err = cmd.Start()
	if err != nil {
		return "", err
	}

	_, err = stdin.Write(inputBytes)
	if err != nil {
		return "", err
	}

	err = stdin.Close()
	if err != nil {
		return "", err
	}

	err = cmd.Wait()
	if err != nil {
		return "", err
	}

	resultBytes := stdout.Bytes()

	hash := sha256.Sum256(resultBytes)
	fileName := hex.EncodeToString(hash[:]) + ".webp"
	folderPath := filepath.Join(".", "public", "avatars")

	err = writeOnce(folderPath, fileName, resultBytes)
	if err != nil {
		return "", err
	}

	return fileName, nil
}

// writeOnce stores the bytes under folder/fileName unless an identical file
// (same content hash name) is already there.
func writeOnce(folderPath string, fileName string, content []byte) error {
	mutex.Lock()
	defer mutex.Unlock()

	err := os.MkdirAll(folderPath, os.ModePerm)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(folderPath, fileName)

	_, err = os.Stat(fullPath)
	if os.IsNotExist(err) {
		return os.WriteFile(fullPath, content, 0644)
	}
	return err
}
