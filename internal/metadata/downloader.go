package metadata

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-version"
)

const nugetServiceIndex = "https://api.nuget.org/v3/index.json"
const metadataPackage = "microsoft.windows.sdk.win32metadata"

// DownloadMetadata fetches the newest published win32metadata package and
// writes its .winmd payload to the given path.
func DownloadMetadata(metadataFileName string) error {
	baseAddress, err := packageBaseAddress()
	if err != nil {
		return err
	}

	versionsBody, err := queryGet(fmt.Sprintf("%s%s/index.json", baseAddress, metadataPackage))
	if err != nil {
		return errors.Wrap(err, "listing package versions")
	}
	var index struct {
		Versions []string `json:"versions"`
	}
	if err := json.Unmarshal(versionsBody, &index); err != nil {
		return errors.Wrap(err, "parsing package version index")
	}
	if len(index.Versions) == 0 {
		return errors.Newf("package %s has no published versions", metadataPackage)
	}

	ordered := make([]*version.Version, len(index.Versions))
	for i, raw := range index.Versions {
		parsed, err := version.NewVersion(raw)
		if err != nil {
			return errors.Wrapf(err, "parsing version %s", raw)
		}
		ordered[i] = parsed
	}
	sort.Sort(version.Collection(ordered))
	newest := ordered[len(ordered)-1].Original()

	nupkg, err := queryGet(fmt.Sprintf("%s%s/%s/%s.%s.nupkg", baseAddress, metadataPackage, newest, metadataPackage, newest))
	if err != nil {
		return errors.Wrapf(err, "downloading %s %s", metadataPackage, newest)
	}

	archive, err := zip.NewReader(bytes.NewReader(nupkg), int64(len(nupkg)))
	if err != nil {
		return errors.Wrap(err, "opening package archive")
	}
	for _, file := range archive.File {
		if filepath.Ext(file.Name) != ".winmd" {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return errors.Wrapf(err, "opening %s", file.Name)
		}
		payload, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return errors.Wrapf(err, "extracting %s", file.Name)
		}
		return os.WriteFile(metadataFileName, payload, 0o644)
	}
	return errors.Newf("package %s %s carries no .winmd entry", metadataPackage, newest)
}

func packageBaseAddress() (string, error) {
	body, err := queryGet(nugetServiceIndex)
	if err != nil {
		return "", errors.Wrap(err, "querying nuget service index")
	}
	var index struct {
		Resources []struct {
			Id   string `json:"@id"`
			Type string `json:"@type"`
		} `json:"resources"`
	}
	if err := json.Unmarshal(body, &index); err != nil {
		return "", errors.Wrap(err, "parsing nuget service index")
	}
	for _, resource := range index.Resources {
		if strings.Contains(resource.Type, "PackageBaseAddress") {
			return resource.Id, nil
		}
	}
	return "", errors.New("nuget service index has no PackageBaseAddress resource")
}

func queryGet(url string) ([]byte, error) {
	response, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		return nil, errors.Newf("GET %s: %s", url, response.Status)
	}
	return io.ReadAll(response.Body)
}
