package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaaclb98/find-my-fav/internal/config"
	"github.com/isaaclb98/find-my-fav/internal/model"
	"github.com/isaaclb98/find-my-fav/internal/store"
	"github.com/isaaclb98/find-my-fav/internal/testutil"
)

// finishedEnv returns an env whose four-picture tournament has finished.
func finishedEnv(t *testing.T) *cliEnv {
	t.Helper()
	env := newEnv(t, "a.png", "b.png", "c.png", "d.png")
	env.mustExecute(t, "", "init", env.photos)
	env.mustExecute(t, strings.Repeat("1\n", 3), "run")
	return env
}

func TestInit(t *testing.T) {
	env := newEnv(t, "a.png", "b.png", "c.png")
	require.NoError(t, os.WriteFile(filepath.Join(env.photos, "notes.txt"), []byte("hi"), 0o644))

	result := decodeData[InitResult](t, env.mustExecute(t, "", "init", env.photos, "--format", "json"))
	assert.Equal(t, 3, result.Found)
	assert.Equal(t, 3, result.Inserted)
	assert.Equal(t, 3, result.Items)
	assert.Equal(t, env.photos, result.Source)
	assert.NotEmpty(t, result.Tournament)

	// Adding a picture before the first decision is allowed.
	testutil.WriteImages(t, env.photos, "e.png")
	out := env.mustExecute(t, "", "init", env.photos)
	assert.Contains(t, out, "Added 1 of 4 picture(s)")
	assert.Contains(t, out, "4 item(s) in catalog")
}

func TestInitRecursive(t *testing.T) {
	env := newEnv(t, "a.png", "nested/b.png")

	out := env.mustExecute(t, "", "init", env.photos)
	assert.Contains(t, out, "Added 1 of 1")

	out = env.mustExecute(t, "", "init", env.photos, "--recursive")
	assert.Contains(t, out, "Added 1 of 2")
}

func TestInitNoImages(t *testing.T) {
	env := newEnv(t)

	_, _, err := env.execute("", "init", env.photos)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to rank")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInitMissingFolder(t *testing.T) {
	env := newEnv(t)

	_, _, err := env.execute("", "init", filepath.Join(env.photos, "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInitAfterStart(t *testing.T) {
	env := newEnv(t, "a.png", "b.png", "c.png")
	env.mustExecute(t, "", "init", env.photos)
	env.mustExecute(t, "1\nq\n", "run")

	testutil.WriteImages(t, env.photos, "late.png")
	stdout, _, err := env.execute("", "init", env.photos)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTournamentStarted)
	assert.Contains(t, stdout, "Error [TOURNAMENT_STARTED]")
}

func TestStatus(t *testing.T) {
	env := newEnv(t, "a.png", "b.png", "c.png", "d.png")
	env.mustExecute(t, "", "init", env.photos)

	out := env.mustExecute(t, "", "status")
	assert.Contains(t, out, "Source:     "+env.photos)
	assert.Contains(t, out, "Round:      1 of 2")
	assert.Contains(t, out, "Decided:    0 of 3 pairings (0.0%)")
	assert.Contains(t, out, "Items:      4 (4 live, 4 waiting this round)")
	assert.Contains(t, out, "Status:     in progress")
}

func TestStatusFinished(t *testing.T) {
	env := finishedEnv(t)

	status := decodeData[StatusResult](t, env.mustExecute(t, "", "status", "--format", "json"))
	assert.True(t, status.Progress.Finished)
	assert.Equal(t, 100.0, status.Percent)
	require.NotNil(t, status.Champion)
	assert.True(t, status.Tournament.Finished)

	out := env.mustExecute(t, "", "status")
	assert.Contains(t, out, "Status:     finished, champion "+status.Champion.Reference)
}

func TestRank(t *testing.T) {
	env := newEnv(t, "a.png", "b.png", "c.png", "d.png")
	env.mustExecute(t, "", "init", env.photos)

	out := env.mustExecute(t, "", "rank")
	assert.Contains(t, out, "provisional")

	env.mustExecute(t, strings.Repeat("1\n", 3), "run")
	result := decodeData[RankResult](t, env.mustExecute(t, "", "rank", "--format", "json"))
	assert.True(t, result.Finished)
	assert.Equal(t, 85.0, result.Threshold)
	require.Len(t, result.Ranking, 4)
	assert.Equal(t, 100.0, result.Ranking[0].Percentile)
	assert.True(t, result.Ranking[0].Export)
	assert.EqualValues(t, 2, result.Ranking[0].Item.Rating)
	assert.False(t, result.Ranking[1].Export)

	result = decodeData[RankResult](t, env.mustExecute(t, "", "rank", "--format", "json", "--threshold", "50"))
	assert.Equal(t, 50.0, result.Threshold)
	assert.True(t, result.Ranking[2].Export)
	assert.False(t, result.Ranking[3].Export)
}

func TestExportRequiresFinishedTournament(t *testing.T) {
	env := newEnv(t, "a.png", "b.png")
	env.mustExecute(t, "", "init", env.photos)

	stdout, _, err := env.execute("", "export", "--dest", env.dest)
	require.Error(t, err)
	assert.Contains(t, stdout, "NOT_FINISHED")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExportToDirectory(t *testing.T) {
	env := finishedEnv(t)

	out := env.mustExecute(t, "", "export", "--dest", env.dest)
	assert.Contains(t, out, "Exported 1 picture(s)")

	dirs, err := os.ReadDir(env.dest)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.True(t, strings.HasPrefix(dirs[0].Name(), "photos-"), dirs[0].Name())

	files, err := os.ReadDir(filepath.Join(env.dest, dirs[0].Name()))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0].Name(), "100.0_"), files[0].Name())
}

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]int
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = len(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func TestExportToS3(t *testing.T) {
	env := finishedEnv(t)

	opts := env.directOptions("json")
	opts.Config.Export.Threshold = 50
	opts.Config.Export.S3 = config.S3Config{Bucket: "pictures", Prefix: "favourites"}
	client := &fakeS3{objects: map[string]int{}}

	cmd, out := bareCommand()
	err := runExport(&ExportOptions{
		RootOptions: opts,
		Now:         testutil.NewClock(time.Time{}).Now,
		S3Client:    client,
	}, cmd)
	require.NoError(t, err)

	report := decodeData[exportReport](t, out.String())
	assert.Equal(t, "s3://pictures/favourites/photos-20240309-5600", report.Location)
	// Percentiles are 100, 75, 50 and 25; the threshold is inclusive.
	require.Len(t, report.Files, 3)
	assert.Len(t, client.objects, 3)
	for _, f := range report.Files {
		assert.Equal(t, len(testutil.PNGHeader), client.objects["favourites/photos-20240309-5600/"+f.Name])
	}
}

// exportReport mirrors export.Report for decoding.
type exportReport struct {
	Location string `json:"location"`
	Files    []struct {
		Name string `json:"name"`
	} `json:"files"`
}

func TestVerifyConsistent(t *testing.T) {
	env := finishedEnv(t)

	out := env.mustExecute(t, "", "verify")
	assert.Contains(t, out, "✓ Ledger consistent")
}

func TestVerifyCorruptLedger(t *testing.T) {
	env := newEnv(t)
	st, err := store.Open(env.db)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = st.InsertItems(ctx, []string{"x.png", "y.png"})
	require.NoError(t, err)
	_, err = st.AppendMatch(ctx, model.Match{RoundNumber: 2, ParticipantA: 1, ParticipantB: 2, Winner: 1})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	stdout, _, err := env.execute("", "verify")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "✗")
	assert.Contains(t, stdout, "LEDGER_CORRUPT")

	stdout, _, err = env.execute("", "verify", "--format", "json")
	require.Error(t, err)
	result := decodeData[VerifyResult](t, stdout)
	assert.False(t, result.Consistent)
	assert.Equal(t, 1, result.Records)
	assert.NotEmpty(t, result.Findings)

	// run refuses to continue from a corrupt ledger.
	_, _, err = env.execute("", "run")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrLedgerCorrupt)
}
