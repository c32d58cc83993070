package download_test

import (
	"archive/zip"
	"bytes"
	"context"
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/voxsplit/voxsplit-be/src/server/internal/download/errors"
	"github.com/voxsplit/voxsplit-be/src/server/internal/download/gateway"
	"github.com/voxsplit/voxsplit-be/src/server/internal/download/usecase"
	"github.com/voxsplit/voxsplit-be/src/server/internal/separation/errors"
	jobentity "github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	jobstorage "github.com/voxsplit/voxsplit-be/src/shared/job/storage"
	"github.com/voxsplit/voxsplit-be/src/shared/stempath"
	"github.com/voxsplit/voxsplit-be/src/shared/testing"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
)

var _ = Describe("Download", func() {
	var (
		downloadGateway downloadgateway.Gateway
		jobStore        *jobstorage.MemoryDB
		outputRoot      string
	)

	BeforeEach(func() {
		var err error
		outputRoot, err = os.MkdirTemp("", "voxsplit-output-")
		Expect(err).NotTo(HaveOccurred())

		jobStore = jobstorage.NewMemoryDB()

		pathGenerator, err := stempath.NewGenerator(outputRoot)
		Expect(err).NotTo(HaveOccurred())

		usecase := downloadusecase.NewUsecase(jobStore, pathGenerator)
		downloadGateway = downloadgateway.NewGateway(usecase)
	})

	AfterEach(func() {
		Expect(os.RemoveAll(outputRoot)).To(Succeed())
	})

	// seedCompletedJob writes real stem files into the output layout and
	// records them on a completed job, the way the worker leaves things.
	var seedCompletedJob = func(originalFilename string, stems map[string][]byte) jobentity.Job {
		job := jobentity.NewJob(originalFilename)
		Expect(jobStore.CreateJob(context.Background(), job)).To(Succeed())

		jobDir := filepath.Join(outputRoot, job.ID)
		Expect(os.MkdirAll(jobDir, os.ModePerm)).To(Succeed())

		stemPaths := map[string]string{}
		for stemName, contents := range stems {
			fileName := stemName + ".mp3"
			Expect(os.WriteFile(filepath.Join(jobDir, fileName), contents, os.ModePerm)).To(Succeed())
			stemPaths[stemName] = stempath.RelStemPath(job.ID, fileName)
		}

		err := jobStore.UpdateJob(context.Background(), job.ID, jobentity.CompleteUpdater(stemPaths))
		Expect(err).NotTo(HaveOccurred())

		completed, err := jobStore.GetJob(context.Background(), job.ID)
		Expect(err).NotTo(HaveOccurred())
		return completed
	}

	var downloadAllRequest = func(jobID string) *httptest.ResponseRecorder {
		request := testing.RequestFactory{
			Method: "GET",
			Target: "/download/" + jobID + "/all",
		}.MakeFake()

		response := httptest.NewRecorder()
		c := testing.PrepareEchoContext(request, response)

		err := downloadGateway.DownloadAll(c, jobID)
		Expect(err).NotTo(HaveOccurred())

		return response
	}

	var downloadFileRequest = func(relPath string) *httptest.ResponseRecorder {
		request := testing.RequestFactory{
			Method: "GET",
			Target: "/download/" + relPath,
		}.MakeFake()

		response := httptest.NewRecorder()
		c := testing.PrepareEchoContext(request, response)

		err := downloadGateway.DownloadFile(c, relPath)
		Expect(err).NotTo(HaveOccurred())

		return response
	}

	var unpackZip = func(zipBytes []byte) map[string][]byte {
		reader, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
		Expect(err).NotTo(HaveOccurred())

		entries := map[string][]byte{}
		for _, file := range reader.File {
			src, err := file.Open()
			Expect(err).NotTo(HaveOccurred())

			contents, err := io.ReadAll(src)
			Expect(err).NotTo(HaveOccurred())
			Expect(src.Close()).To(Succeed())

			entries[file.Name] = contents
		}

		return entries
	}

	Describe("DownloadAll", func() {
		Describe("Completed job", func() {
			var job jobentity.Job

			BeforeEach(func() {
				job = seedCompletedJob("My Mixtape.mp3", map[string][]byte{
					jobentity.VocalsStem:        []byte("vocals data"),
					jobentity.AccompanimentStem: []byte("accompaniment data"),
				})
			})

			It("serves an archive holding exactly the stems", func() {
				response := downloadAllRequest(job.ID)
				Expect(response.Code).To(Equal(http.StatusOK))
				Expect(response.Header().Get(echo.HeaderContentDisposition)).
					To(ContainSubstring("My Mixtape_stems.zip"))

				entries := unpackZip(response.Body.Bytes())
				Expect(entries).To(HaveLen(2))
				Expect(entries["vocals.mp3"]).To(Equal([]byte("vocals data")))
				Expect(entries["accompaniment.mp3"]).To(Equal([]byte("accompaniment data")))
			})

			It("rebuilds the archive on every request", func() {
				archivePath := filepath.Join(outputRoot, job.ID, "My Mixtape_stems.zip")

				By("planting a corrupt archive from an earlier run")
				Expect(os.WriteFile(archivePath, []byte("not a zip at all"), os.ModePerm)).To(Succeed())

				response := downloadAllRequest(job.ID)
				Expect(response.Code).To(Equal(http.StatusOK))

				entries := unpackZip(response.Body.Bytes())
				Expect(entries).To(HaveLen(2))

				By("requesting it once more")
				response = downloadAllRequest(job.ID)
				Expect(response.Code).To(Equal(http.StatusOK))
				Expect(unpackZip(response.Body.Bytes())).To(HaveLen(2))
			})
		})

		Describe("Processing job", func() {
			It("asks the client to wait", func() {
				job := jobentity.NewJob("mixtape.mp3")
				Expect(jobStore.CreateJob(context.Background(), job)).To(Succeed())

				response := downloadAllRequest(job.ID)
				Expect(response.Code).To(Equal(http.StatusBadRequest))

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(downloaderrors.JobNotCompletedCode))
			})
		})

		Describe("Unknown job", func() {
			It("misses", func() {
				response := downloadAllRequest("not-a-real-job")
				Expect(response.Code).To(Equal(http.StatusNotFound))

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(separationerrors.JobNotFoundCode))
			})
		})

		Describe("Stems gone from disk", func() {
			It("misses", func() {
				job := seedCompletedJob("mixtape.mp3", map[string][]byte{
					jobentity.VocalsStem:        []byte("vocals data"),
					jobentity.AccompanimentStem: []byte("accompaniment data"),
				})

				Expect(os.RemoveAll(filepath.Join(outputRoot, job.ID))).To(Succeed())

				response := downloadAllRequest(job.ID)
				Expect(response.Code).To(Equal(http.StatusNotFound))

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(downloaderrors.StemsMissingCode))
			})
		})

		Describe("Completed job without stem records", func() {
			It("misses", func() {
				job := jobentity.NewJob("mixtape.mp3")
				Expect(jobStore.CreateJob(context.Background(), job)).To(Succeed())
				err := jobStore.UpdateJob(context.Background(), job.ID, jobentity.CompleteUpdater(nil))
				Expect(err).NotTo(HaveOccurred())

				response := downloadAllRequest(job.ID)
				Expect(response.Code).To(Equal(http.StatusNotFound))

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(downloaderrors.StemsMissingCode))
			})
		})
	})

	Describe("DownloadFile", func() {
		var job jobentity.Job

		BeforeEach(func() {
			job = seedCompletedJob("mixtape.mp3", map[string][]byte{
				jobentity.VocalsStem:        []byte("vocals data"),
				jobentity.AccompanimentStem: []byte("accompaniment data"),
			})
		})

		It("serves a stem file", func() {
			response := downloadFileRequest("output/" + job.ID + "/vocals.mp3")
			Expect(response.Code).To(Equal(http.StatusOK))
			Expect(response.Body.Bytes()).To(Equal([]byte("vocals data")))
		})

		It("misses on a file that doesn't exist", func() {
			response := downloadFileRequest("output/" + job.ID + "/drums.mp3")
			Expect(response.Code).To(Equal(http.StatusNotFound))

			resErr := testing.DecodeJSONError(response.Body)
			Expect(resErr.Code).To(BeEquivalentTo(downloaderrors.FileNotFoundCode))
		})

		It("refuses to serve a directory", func() {
			response := downloadFileRequest("output/" + job.ID)
			Expect(response.Code).To(Equal(http.StatusNotFound))

			resErr := testing.DecodeJSONError(response.Body)
			Expect(resErr.Code).To(BeEquivalentTo(downloaderrors.FileNotFoundCode))
		})

		Describe("Escaping paths", func() {
			var secretPath string

			BeforeEach(func() {
				By("planting a real file right outside the output root")
				secretPath = filepath.Join(filepath.Dir(outputRoot), "secret-"+job.ID+".txt")
				Expect(os.WriteFile(secretPath, []byte("keep out"), os.ModePerm)).To(Succeed())
			})

			AfterEach(func() {
				Expect(os.Remove(secretPath)).To(Succeed())
			})

			It("rejects a traversal to an existing file", func() {
				response := downloadFileRequest("output/../" + filepath.Base(secretPath))
				Expect(response.Code).To(Equal(http.StatusBadRequest))

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(downloaderrors.InvalidPathCode))
			})

			escapingPaths := []string{
				"output/../../etc/passwd",
				"/etc/passwd",
				"../output/vocals.mp3",
				`output\..\secrets.txt`,
				"outputs/vocals.mp3",
			}

			for _, escapingPath := range escapingPaths {
				escapingPath := escapingPath

				It("rejects "+escapingPath, func() {
					response := downloadFileRequest(escapingPath)
					Expect(response.Code).To(Equal(http.StatusBadRequest))

					resErr := testing.DecodeJSONError(response.Body)
					Expect(resErr.Code).To(BeEquivalentTo(downloaderrors.InvalidPathCode))
				})
			}
		})
	})
})
