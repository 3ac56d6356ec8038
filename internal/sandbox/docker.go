package sandbox

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"

	"github.com/quizforge/quizforge/internal/domain"
)

// DockerSandbox executes submissions in a throwaway container with the
// network disabled and memory/cpu limits applied.
type DockerSandbox struct {
	client  *client.Client
	config  DockerConfig
	timeout time.Duration
}

// DockerConfig holds configuration for the Docker sandbox
type DockerConfig struct {
	Image    string        // default: python:3.12-alpine
	MemoryMB int           // default: 128
	CPULimit float64       // default: 0.5 cores
	Timeout  time.Duration // default: DefaultTimeout
}

// NewDockerSandbox creates a Docker-backed sandbox, verifying the
// daemon is reachable.
func NewDockerSandbox(cfg DockerConfig) (*DockerSandbox, error) {
	if cfg.Image == "" {
		cfg.Image = "python:3.12-alpine"
	}
	if cfg.MemoryMB <= 0 {
		cfg.MemoryMB = 128
	}
	if cfg.CPULimit <= 0 {
		cfg.CPULimit = 0.5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("docker not reachable: %w", err)
	}

	return &DockerSandbox{client: cli, config: cfg, timeout: cfg.Timeout}, nil
}

// Run executes the submission in a fresh container and removes it
func (s *DockerSandbox) Run(ctx context.Context, code string, cases []domain.TestCase) (*Result, error) {
	if err := s.ensureImage(ctx, s.config.Image); err != nil {
		return nil, fmt.Errorf("ensure image: %w", err)
	}

	casesJSON, err := encodeCases(cases)
	if err != nil {
		return nil, fmt.Errorf("encode test cases: %w", err)
	}

	containerCfg := &container.Config{
		Image:           s.config.Image,
		Cmd:             []string{"python3", "harness.py"},
		WorkingDir:      "/workspace",
		NetworkDisabled: true,
		Tty:             false,
		Labels: map[string]string{
			"quizforge.sandbox": "true",
		},
	}
	hostCfg := &container.HostConfig{
		Resources: container.Resources{
			Memory:   int64(s.config.MemoryMB) * 1024 * 1024,
			NanoCPUs: int64(s.config.CPULimit * 1e9),
		},
	}

	resp, err := s.client.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}
	defer func() {
		_ = s.client.ContainerRemove(context.Background(), resp.ID, container.RemoveOptions{Force: true})
	}()

	files := map[string]string{
		"solution.py": code,
		"harness.py":  harnessScript,
		"cases.json":  string(casesJSON),
	}
	if err := s.copyFiles(ctx, resp.ID, files); err != nil {
		return nil, fmt.Errorf("copy files: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.ContainerStart(runCtx, resp.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("start container: %w", err)
	}

	statusCh, errCh := s.client.ContainerWait(runCtx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if runCtx.Err() != nil {
			return &Result{SetupError: "Execution timed out."}, nil
		}
		return nil, fmt.Errorf("wait container: %w", err)
	case <-statusCh:
	}

	stdout, stderr, err := s.containerLogs(ctx, resp.ID)
	if err != nil {
		return nil, fmt.Errorf("read logs: %w", err)
	}

	result, err := parseHarnessOutput(stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, truncateOutput(stderr))
	}
	return result, nil
}

// Available pings the Docker daemon
func (s *DockerSandbox) Available(ctx context.Context) bool {
	_, err := s.client.Ping(ctx)
	return err == nil
}

// Close closes the Docker client
func (s *DockerSandbox) Close() error {
	return s.client.Close()
}

func (s *DockerSandbox) ensureImage(ctx context.Context, img string) error {
	_, err := s.client.ImageInspect(ctx, img)
	if err == nil {
		return nil
	}

	reader, err := s.client.ImagePull(ctx, img, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull image %s: %w", img, err)
	}
	defer reader.Close()
	_, _ = io.Copy(io.Discard, reader)
	return nil
}

func (s *DockerSandbox) copyFiles(ctx context.Context, containerID string, files map[string]string) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	for name, content := range files {
		header := &tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}
		if err := tw.WriteHeader(header); err != nil {
			return fmt.Errorf("write tar header: %w", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			return fmt.Errorf("write tar content: %w", err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("close tar: %w", err)
	}

	return s.client.CopyToContainer(ctx, containerID, "/workspace", &buf, container.CopyToContainerOptions{})
}

func (s *DockerSandbox) containerLogs(ctx context.Context, containerID string) (string, string, error) {
	logs, err := s.client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", err
	}
	defer logs.Close()

	var raw bytes.Buffer
	if _, err := io.Copy(&raw, logs); err != nil {
		return "", "", err
	}
	stdout, stderr := demuxOutput(raw.Bytes())
	return stdout, stderr, nil
}

// demuxOutput separates Docker multiplexed stdout/stderr streams.
// Docker stream protocol uses 8-byte headers: [type][0][0][0][size1][size2][size3][size4]
// type: 1=stdout, 2=stderr
func demuxOutput(data []byte) (stdout, stderr string) {
	var outBuf, errBuf strings.Builder

	for len(data) >= 8 {
		streamType := data[0]
		size := int(data[4])<<24 | int(data[5])<<16 | int(data[6])<<8 | int(data[7])
		data = data[8:]

		if size > len(data) {
			size = len(data)
		}

		chunk := string(data[:size])
		data = data[size:]

		switch streamType {
		case 1:
			outBuf.WriteString(chunk)
		case 2:
			errBuf.WriteString(chunk)
		}
	}

	if outBuf.Len() == 0 && errBuf.Len() == 0 && len(data) > 0 {
		return string(data), ""
	}

	return outBuf.String(), errBuf.String()
}

var _ CodeSandbox = (*DockerSandbox)(nil)
