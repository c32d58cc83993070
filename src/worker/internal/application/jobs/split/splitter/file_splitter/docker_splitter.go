package file_splitter

import (
	"bytes"
	"context"
	"fmt"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/application/jobs/split/splitter"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/working_dir"
	"io"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/uuid"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

const (
	containerInputDir  = "/input"
	containerOutputDir = "/output"
)

//counterfeiter:generate . ContainerAPI
type ContainerAPI interface {
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

var _ ContainerAPI = (*client.Client)(nil)

func NewDockerClient() (*client.Client, error) {
	dockerClient, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, cerr.Wrap(err).Error("Failed to create a Docker client")
	}

	return dockerClient, nil
}

var _ splitter.FileSplitter = DockerFileSplitter{}

func NewDockerFileSplitter(workingDirStr string, imageRef string, docker ContainerAPI) (DockerFileSplitter, error) {
	workingDir, err := working_dir.NewWorkingDir(workingDirStr)
	if err != nil {
		return DockerFileSplitter{}, cerr.Wrap(err).Error("Failed to convert working dir to absolute format")
	}

	return DockerFileSplitter{
		workingDir: workingDir,
		imageRef:   imageRef,
		docker:     docker,
	}, nil
}

type DockerFileSplitter struct {
	workingDir working_dir.WorkingDir
	imageRef   string
	docker     ContainerAPI
}

func (d DockerFileSplitter) SplitFile(ctx context.Context, originalFilePath string, stemsOutputDir string) (splitter.StemFilePaths, error) {
	absOriginalFilePath, err := filepath.Abs(originalFilePath)
	if err != nil {
		return nil, cerr.Wrap(err).Error("Cannot convert source path to absolute format")
	}

	errctx := cerr.Field("original_filepath", absOriginalFilePath)

	absStemsOutputDir, err := filepath.Abs(stemsOutputDir)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Cannot convert destination path to absolute format")
	}

	errctx = errctx.Field("output_dir", absStemsOutputDir)

	if err := os.MkdirAll(absStemsOutputDir, os.ModePerm); err != nil {
		return nil, errctx.Wrap(err).Error("Failed to create the stems output directory")
	}

	// splitting is a lengthy process, if we want to halt now is the time
	if ctx.Err() != nil {
		return nil, cerr.Wrap(ctx.Err()).Error("Context cancelled before splitting could happen")
	}

	if err := d.runContainer(ctx, absOriginalFilePath, absStemsOutputDir); err != nil {
		return nil, errctx.Wrap(err).Error("Failed to run the split container")
	}

	engineOutputDir, err := locateEngineOutputDir(absStemsOutputDir)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to locate the engine's output directory")
	}

	return collectStemFilePaths(engineOutputDir)
}

func (d DockerFileSplitter) runContainer(ctx context.Context, sourcePath string, destPath string) error {
	logger := log.WithFields(log.Fields{
		"sourcePath": sourcePath,
		"destPath":   destPath,
		"image":      d.imageRef,
	})

	logger.Info("Running split container")

	containerSourcePath := containerInputDir + "/" + filepath.Base(sourcePath)
	cmd := []string{"separate", "-p", spleeterTwoStemsModel, "-o", containerOutputDir, "-c", "mp3", "-b", "320k", containerSourcePath}

	errctx := cerr.Field("image", d.imageRef).Field("container_cmd", cmd)

	config := &container.Config{
		Image: d.imageRef,
		Cmd:   cmd,
	}

	hostConfig := &container.HostConfig{
		Mounts: []mount.Mount{
			{
				Type:     mount.TypeBind,
				Source:   filepath.Dir(sourcePath),
				Target:   containerInputDir,
				ReadOnly: true,
			},
			{
				Type:   mount.TypeBind,
				Source: destPath,
				Target: containerOutputDir,
			},
		},
	}

	containerName := "voxsplit-split-" + uuid.New().String()

	createResponse, err := d.docker.ContainerCreate(ctx, config, hostConfig, &network.NetworkingConfig{}, nil, containerName)
	if client.IsErrNotFound(err) {
		logger.Info("Split image not present, pulling it")

		pullReader, pullErr := d.docker.ImagePull(ctx, d.imageRef, image.PullOptions{})
		if pullErr != nil {
			return errctx.Wrap(pullErr).Error("Failed to pull the split image")
		}

		_, _ = io.Copy(io.Discard, pullReader)
		_ = pullReader.Close()

		createResponse, err = d.docker.ContainerCreate(ctx, config, hostConfig, &network.NetworkingConfig{}, nil, containerName)
	}

	if err != nil {
		return errctx.Wrap(err).Error("Failed to create the split container")
	}

	errctx = errctx.Field("container_id", createResponse.ID)

	defer func() {
		removeErr := d.docker.ContainerRemove(context.Background(), createResponse.ID, container.RemoveOptions{Force: true})
		if removeErr != nil {
			cerr.Log(errctx.Wrap(removeErr).Error("Failed to remove the split container"))
		}
	}()

	if err := d.docker.ContainerStart(ctx, createResponse.ID, container.StartOptions{}); err != nil {
		return errctx.Wrap(err).Error("Failed to start the split container")
	}

	waitCh, waitErrCh := d.docker.ContainerWait(ctx, createResponse.ID, container.WaitConditionNotRunning)

	select {
	case err := <-waitErrCh:
		return errctx.Wrap(err).Error("Failed to wait on the split container")

	case waitResponse := <-waitCh:
		if waitResponse.StatusCode != 0 {
			output := d.containerOutput(ctx, createResponse.ID)
			return errctx.Field("exit_code", waitResponse.StatusCode).
				Field("container_output", output).
				Error(fmt.Sprintf("Split container exited with code %d: %s", waitResponse.StatusCode, output))
		}
	}

	logger.Info("Finished split container")

	return nil
}

func (d DockerFileSplitter) containerOutput(ctx context.Context, containerID string) string {
	logsReader, err := d.docker.ContainerLogs(ctx, containerID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		cerr.Log(cerr.Field("container_id", containerID).Wrap(err).Error("Failed to read the split container logs"))
		return ""
	}

	defer logsReader.Close()

	output := bytes.Buffer{}
	if _, err := stdcopy.StdCopy(&output, &output, logsReader); err != nil {
		cerr.Log(cerr.Field("container_id", containerID).Wrap(err).Error("Failed to demux the split container logs"))
	}

	return output.String()
}
