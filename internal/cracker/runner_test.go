package cracker_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lovelyhashcat/internal/config"
	"lovelyhashcat/internal/cracker"
	"lovelyhashcat/internal/events"
	"lovelyhashcat/internal/fileutil"
	"lovelyhashcat/internal/services"
	"lovelyhashcat/internal/services/hashcat"
	"lovelyhashcat/internal/testsupport"
)

const (
	md5Hash     = "5f4dcc3b5aa765d61d8327deb882cf99"
	md5Password = "password"
	pkzipHash   = "$pkzip2$1*1*2*0*1c*1d*abcd*0*2a*8*1c*ef12*e3b0$/pkzip2$"
)

var statusLines = []string{
	"Session..........: hashcat",
	"Status...........: Cracked",
	"Hash.Mode........: 0 (MD5)",
	"Recovered........: 1/1 (100.00%) Digests",
	"Progress.........: 10/10 (100.00%)",
}

func newRunner(t *testing.T, cfg *config.Config) (*cracker.Runner, *events.Hub) {
	t.Helper()
	hub := events.NewHub(0)
	return cracker.NewRunner(cracker.OptionsFromConfig(cfg), hub, nil), hub
}

func writeWordlist(t *testing.T, cfg *config.Config) string {
	t.Helper()
	return testsupport.WriteFile(t, filepath.Join(testsupport.BaseDir(cfg), "words.txt"), "password\nletmein\n")
}

func waitExit(t *testing.T, r *cracker.Runner) hashcat.ExitResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	res, ok, err := r.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if !ok {
		t.Fatal("expected an exit result")
	}
	return res
}

func tempHashFiles(t *testing.T, cfg *config.Config) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(cfg.Paths.WorkDir, fileutil.TempHashPattern))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func TestRunnerDictionaryAttackEndToEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stdout:  statusLines,
		Potfile: []string{md5Hash + ":" + md5Password},
	}))
	r, hub := newRunner(t, cfg)
	wordlist := writeWordlist(t, cfg)

	var (
		mu              sync.Mutex
		tempsAtFound    []int
		finishedAfterPW bool
		sawFound        bool
	)
	hub.AddSink(events.SinkFunc(func(evt events.Event) {
		mu.Lock()
		defer mu.Unlock()
		switch evt.Kind {
		case events.KindPasswordFound:
			sawFound = true
			matches, _ := filepath.Glob(filepath.Join(cfg.Paths.WorkDir, fileutil.TempHashPattern))
			tempsAtFound = append(tempsAtFound, len(matches))
		case events.KindProcessFinished:
			finishedAfterPW = sawFound
		}
	}))

	sess, err := r.Start(context.Background(), hashcat.CrackRequest{
		AttackMode: hashcat.AttackDictionary,
		HashText:   md5Hash,
		HashMode:   hashcat.IntPtr(0),
		Wordlists:  []string{wordlist},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if sess.TempFile() == "" || sess.HashFile() != sess.TempFile() {
		t.Fatalf("expected raw hash text to become the session hash file, got %q/%q", sess.HashFile(), sess.TempFile())
	}

	res := waitExit(t, r)
	if res.Code != 0 || res.Status != hashcat.ExitNormal {
		t.Fatalf("exit = (%d, %q), want (0, Exited)", res.Code, res.Status)
	}

	args := testsupport.ReadStubArgs(t, cfg.Paths.HashcatPath)
	want := []string{sess.HashFile(), "-m", "0", "-a", "0", wordlist}
	if len(args) < len(want) {
		t.Fatalf("argv too short: %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("argv[%d] = %q, want %q (argv %v)", i, args[i], want[i], args)
		}
	}

	found := hub.Filter(sess.ID(), events.KindPasswordFound)
	if len(found) != 1 {
		t.Fatalf("expected exactly one password_found, got %d", len(found))
	}
	if found[0].Hash != md5Hash || found[0].Password != md5Password {
		t.Fatalf("unexpected credential %+v", found[0])
	}

	finished := hub.Filter(sess.ID(), events.KindProcessFinished)
	if len(finished) != 1 || finished[0].Exit == nil {
		t.Fatalf("expected one process_finished event, got %+v", finished)
	}
	if finished[0].Exit.Code != 0 || finished[0].Exit.Status != "Exited" {
		t.Fatalf("process_finished exit = %+v", finished[0].Exit)
	}
	if finished[0].Exit.StoppedAt.Before(finished[0].Exit.StartedAt) {
		t.Fatalf("stop precedes start: %+v", finished[0].Exit)
	}
	if len(hub.Filter(sess.ID(), events.KindStatus)) == 0 {
		t.Fatal("expected status events")
	}

	mu.Lock()
	defer mu.Unlock()
	if !finishedAfterPW {
		t.Fatal("password_found must precede process_finished")
	}
	for _, n := range tempsAtFound {
		if n != 1 {
			t.Fatalf("temp hash file missing when result was reported (count %d)", n)
		}
	}
	if _, err := os.Stat(sess.TempFile()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp hash file should be removed after exit, stat err=%v", err)
	}
	if sess.ReconcilePasses() == 0 {
		t.Fatal("expected at least one reconciliation pass")
	}
}

func TestRunnerReportsStreamCredentialOnce(t *testing.T) {
	line := pkzipHash + ":hunter2"
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stdout:  []string{line},
		Potfile: []string{line},
	}))
	r, hub := newRunner(t, cfg)
	hashFile := testsupport.WriteHashFile(t, testsupport.BaseDir(cfg), pkzipHash)

	sess, err := r.Start(context.Background(), hashcat.CrackRequest{
		AttackMode: hashcat.AttackMask,
		HashFile:   hashFile,
		HashMode:   hashcat.IntPtr(17200),
		Mask:       "?l?l?l?l?l?l?l",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitExit(t, r)

	found := hub.Filter(sess.ID(), events.KindPasswordFound)
	if len(found) != 1 {
		t.Fatalf("expected one password_found across stream and potfile, got %d", len(found))
	}
	if found[0].Source != events.SourceStream || found[0].Password != "hunter2" {
		t.Fatalf("unexpected event %+v", found[0])
	}
	if _, err := os.Stat(hashFile); err != nil {
		t.Fatalf("caller-owned hash file must survive: %v", err)
	}
}

func TestRunnerRejectsConcurrentStart(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{Sleep: 10}))
	r, hub := newRunner(t, cfg)
	req := hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d?d?d?d"}

	sess, err := r.Start(context.Background(), req)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !sess.State().Active() || r.PID() == 0 {
		t.Fatal("expected an active session with a pid")
	}

	_, err = r.Start(context.Background(), req)
	if !errors.Is(err, cracker.ErrSessionActive) || !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	if r.Current() != sess {
		t.Fatal("rejected start must not replace the live session")
	}

	if !r.Stop() {
		t.Fatal("expected stop to signal the running session")
	}
	res := waitExit(t, r)
	if res.Status != hashcat.ExitCrashed {
		t.Fatalf("signalled process should report Crashed, got %q", res.Status)
	}
	if res.Err != nil {
		t.Fatalf("requested stop must not surface an error, got %v", res.Err)
	}
	if r.Stop() {
		t.Fatal("stopping an exited session must be a no-op")
	}
	if r.PID() != 0 || sess.State().Active() {
		t.Fatal("runner should be idle after exit")
	}

	states := hub.Filter(sess.ID(), events.KindState)
	var names []string
	for _, evt := range states {
		names = append(names, evt.State)
	}
	want := []string{"starting", "running", "stopping", "exited"}
	if len(names) != len(want) {
		t.Fatalf("state events = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("state events = %v, want %v", names, want)
		}
	}

	if _, err := r.Start(context.Background(), req); err != nil {
		t.Fatalf("a new session should start after exit: %v", err)
	}
	if r.Current() == sess {
		t.Fatal("expected a fresh session object")
	}
	r.Stop()
	waitExit(t, r)
}

func TestRunnerStopWithoutSessionIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r, _ := newRunner(t, cfg)
	if r.Stop() {
		t.Fatal("stop without a session must report false")
	}
	if _, ok, err := r.Wait(context.Background()); ok || err != nil {
		t.Fatalf("wait without a session: ok=%v err=%v", ok, err)
	}
	if r.PID() != 0 {
		t.Fatal("expected no pid without a session")
	}
}

func TestRunnerStartFailures(t *testing.T) {
	t.Run("missing executable", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		cfg.Paths.HashcatPath = filepath.Join(testsupport.BaseDir(cfg), "missing", "hashcat")
		r, hub := newRunner(t, cfg)
		_, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
		if !errors.Is(err, services.ErrInvalidExecutable) {
			t.Fatalf("expected ErrInvalidExecutable, got %v", err)
		}
		if r.Current() != nil {
			t.Fatal("no session should exist")
		}
		errs := hub.Filter("", events.KindError)
		if len(errs) != 1 || errs[0].ErrorKind != "invalid_executable" {
			t.Fatalf("expected one invalid_executable error event, got %+v", errs)
		}
	})

	t.Run("spawn failure returns to idle", func(t *testing.T) {
		cfg := testsupport.NewConfig(t)
		cfg.Paths.HashcatPath = testsupport.WriteFile(t, filepath.Join(testsupport.BaseDir(cfg), "bin", "hashcat"), "not executable")
		r, hub := newRunner(t, cfg)
		_, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
		if !errors.Is(err, services.ErrSpawnFailure) {
			t.Fatalf("expected ErrSpawnFailure, got %v", err)
		}
		if r.PID() != 0 {
			t.Fatal("runner must not report an active session")
		}
		if n := len(tempHashFiles(t, cfg)); n != 0 {
			t.Fatalf("temp hash file should be removed after spawn failure, found %d", n)
		}
		var last string
		for _, evt := range hub.Filter("", events.KindState) {
			last = evt.State
		}
		if last != "idle" {
			t.Fatalf("expected final state idle, got %q", last)
		}
	})

	t.Run("missing hashes", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{}))
		r, _ := newRunner(t, cfg)
		_, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, Mask: "?d"})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("missing mode field", func(t *testing.T) {
		cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{}))
		r, _ := newRunner(t, cfg)
		_, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackDictionary, HashText: md5Hash})
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
		if n := len(tempHashFiles(t, cfg)); n != 0 {
			t.Fatalf("temp hash file should not outlive a failed build, found %d", n)
		}
	})
}

func TestRunnerPublishesNonZeroExit(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stderr:   []string{"clGetPlatformIDs(): CL_PLATFORM_NOT_FOUND_KHR"},
		ExitCode: 255,
	}))
	r, hub := newRunner(t, cfg)
	sess, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res := waitExit(t, r)
	if res.Code != 255 || res.Status != hashcat.ExitNormal {
		t.Fatalf("exit = (%d, %q)", res.Code, res.Status)
	}
	stderr := hub.Filter(sess.ID(), events.KindErrorOutput)
	if len(stderr) != 1 || stderr[0].Line != "clGetPlatformIDs(): CL_PLATFORM_NOT_FOUND_KHR" {
		t.Fatalf("unexpected stderr events %+v", stderr)
	}
	notices := hub.Filter(sess.ID(), events.KindNotice)
	if len(notices) == 0 {
		t.Fatal("missing potfile should be reported as a notice")
	}
}

func TestRunnerSummaryPublishesStatusComplete(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stdout: []string{"Session..........: hashcat", "Status...........: Exhausted"},
		Sleep:  0.5,
	}))
	r, hub := newRunner(t, cfg)
	sess, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitExit(t, r)
	if n := len(hub.Filter(sess.ID(), events.KindStatusComplete)); n != 1 {
		t.Fatalf("expected one status_complete, got %d", n)
	}
	if sess.ReconcilePasses() < 2 {
		t.Fatalf("expected summary and exit passes, got %d", sess.ReconcilePasses())
	}
}

func TestRunnerAutoShowReportsPotfileHits(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stdout: []string{
			"INFO: All hashes found as potfile and/or empty entries! Use --show to display them.",
			md5Hash + ":" + md5Password,
		},
		Sleep: 0.5,
	}))
	r, hub := newRunner(t, cfg)
	sess, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	proc := sess.Process()
	waitExit(t, r)

	found := hub.Filter(sess.ID(), events.KindPasswordFound)
	if len(found) != 1 {
		t.Fatalf("expected one password_found, got %d", len(found))
	}
	if found[0].Source != events.SourceShow || found[0].Hash != md5Hash || found[0].Password != md5Password {
		t.Fatalf("unexpected event %+v", found[0])
	}
	if sess.Process() != proc {
		t.Fatal("auto-show must not replace the session process")
	}
}

func TestRunnerCompanions(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stdout: []string{md5Hash + ":" + md5Password, "deadbeefdeadbeefdeadbeefdeadbeef:other"},
	}))
	r, _ := newRunner(t, cfg)
	hashFile := testsupport.WriteHashFile(t, testsupport.BaseDir(cfg), md5Hash)
	ctx := context.Background()

	entries, err := r.Show(ctx, hashFile, "")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if len(entries) != 1 || entries[0].Hash != md5Hash || entries[0].Password != md5Password {
		t.Fatalf("show entries = %+v", entries)
	}
	args := testsupport.ReadStubArgs(t, cfg.Paths.HashcatPath)
	if args[0] != "--show" || args[1] != hashFile {
		t.Fatalf("show argv = %v", args)
	}

	left, err := r.Left(ctx, hashFile, "")
	if err != nil {
		t.Fatalf("left: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("left lines = %v", left)
	}
	if args := testsupport.ReadStubArgs(t, cfg.Paths.HashcatPath); args[0] != "--left" {
		t.Fatalf("left argv = %v", args)
	}

	devices, err := r.Devices(ctx)
	if err != nil {
		t.Fatalf("devices: %v", err)
	}
	if len(devices.Lines) != 2 || devices.Exit.Code != 0 {
		t.Fatalf("devices = %+v", devices)
	}
	if args := testsupport.ReadStubArgs(t, cfg.Paths.HashcatPath); len(args) != 1 || args[0] != "-I" {
		t.Fatalf("devices argv = %v", args)
	}

	if r.Current() != nil {
		t.Fatal("companion runs must not create a session")
	}
}

func TestRunnerPotfileLockExcludesSecondRunner(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{Sleep: 10}))
	first, _ := newRunner(t, cfg)
	second, _ := newRunner(t, cfg)
	req := hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"}

	if _, err := first.Start(context.Background(), req); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := second.Start(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected potfile lock conflict, got %v", err)
	}
	if second.PID() != 0 || second.Current() != nil {
		t.Fatal("second runner must not hold a session")
	}

	first.Stop()
	waitExit(t, first)

	if _, err := second.Start(context.Background(), req); err != nil {
		t.Fatalf("lock should be released after exit: %v", err)
	}
	second.Stop()
	waitExit(t, second)
}

func TestRunnerResolvesRelativePathsFromCallerDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		ExistingArgs: []int{1, 6},
		Potfile:      []string{md5Hash + ":" + md5Password},
	}))
	r, hub := newRunner(t, cfg)
	userDir := filepath.Join(testsupport.BaseDir(cfg), "user")
	hashFile := testsupport.WriteHashFile(t, userDir, md5Hash)
	testsupport.WriteFile(t, filepath.Join(userDir, "words.txt"), "password\n")
	t.Chdir(userDir)

	sess, err := r.Start(context.Background(), hashcat.CrackRequest{
		AttackMode: hashcat.AttackDictionary,
		HashFile:   filepath.Base(hashFile),
		HashMode:   hashcat.IntPtr(0),
		Wordlists:  []string{"words.txt"},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	res := waitExit(t, r)
	if res.Code != 0 {
		t.Fatalf("exit code = %d, stderr %+v", res.Code, hub.Filter(sess.ID(), events.KindErrorOutput))
	}

	args := testsupport.ReadStubArgs(t, cfg.Paths.HashcatPath)
	if args[0] != hashFile || args[5] != filepath.Join(userDir, "words.txt") {
		t.Fatalf("expected absolute paths in argv, got %v", args)
	}
	if sess.HashFile() != hashFile {
		t.Fatalf("session hash file = %q, want %q", sess.HashFile(), hashFile)
	}
	if out := testsupport.ArgAfter(args, "-o"); out != filepath.Join(userDir, "hash_results.txt") {
		t.Fatalf("aux output = %q", out)
	}
	if len(hub.Filter(sess.ID(), events.KindPasswordFound)) != 1 {
		t.Fatal("expected the potfile hit to be reported")
	}
}

func TestRunnerReportsStreamPasswordWithSpaces(t *testing.T) {
	line := pkzipHash + ":correct horse"
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stdout:  []string{line},
		Potfile: []string{line},
	}))
	r, hub := newRunner(t, cfg)
	hashFile := testsupport.WriteHashFile(t, testsupport.BaseDir(cfg), pkzipHash)

	sess, err := r.Start(context.Background(), hashcat.CrackRequest{
		AttackMode: hashcat.AttackMask,
		HashFile:   hashFile,
		HashMode:   hashcat.IntPtr(17210),
		Mask:       "?l?l?l?l?l?l?l",
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitExit(t, r)

	found := hub.Filter(sess.ID(), events.KindPasswordFound)
	if len(found) != 1 {
		t.Fatalf("expected one password_found, got %+v", found)
	}
	if found[0].Password != "correct horse" {
		t.Fatalf("password = %q, want %q", found[0].Password, "correct horse")
	}
}

func TestRunnerStatusEventsCarryChildMemory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Sleep:  0.2,
		After:  []string{"Status...........: Running", "Progress.........: 5/10 (50.00%)"},
		Linger: 0.5,
	}))
	r, hub := newRunner(t, cfg)
	sess, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitExit(t, r)

	status := hub.Filter(sess.ID(), events.KindStatus)
	if len(status) == 0 {
		t.Fatal("expected a status event")
	}
	if status[0].RSS == 0 {
		t.Fatalf("expected the status event to carry the child's RSS, got %+v", status[0])
	}
}

func TestRunnerRecheckReconcilesWhileRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Stdout:  []string{"Recovered........: 1/1 (100.00%) Digests"},
		Potfile: []string{md5Hash + ":" + md5Password},
		Sleep:   1,
	}))
	r, hub := newRunner(t, cfg)
	sess, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitExit(t, r)

	found := hub.Filter(sess.ID(), events.KindPasswordFound)
	if len(found) != 1 || found[0].Source != events.SourcePotfile {
		t.Fatalf("expected one potfile password_found, got %+v", found)
	}
	finished := hub.Filter(sess.ID(), events.KindProcessFinished)
	if len(finished) != 1 {
		t.Fatalf("expected one process_finished, got %d", len(finished))
	}
	if !found[0].Timestamp.Before(finished[0].Exit.StoppedAt) {
		t.Fatalf("password found at %s, process stopped at %s; expected the recheck to report it while running",
			found[0].Timestamp, finished[0].Exit.StoppedAt)
	}
	if found[0].Sequence > finished[0].Sequence {
		t.Fatal("password_found must precede process_finished")
	}
	if sess.ReconcilePasses() < 2 {
		t.Fatalf("expected recheck and exit passes, got %d", sess.ReconcilePasses())
	}
}

func TestRunnerStopDuringExitSequenceIsNoop(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubHashcat(testsupport.Stub{
		Potfile: []string{md5Hash + ":" + md5Password},
	}))
	r, hub := newRunner(t, cfg)

	var (
		mu      sync.Mutex
		stopped []bool
	)
	hub.AddSink(events.SinkFunc(func(evt events.Event) {
		if evt.Kind != events.KindPasswordFound {
			return
		}
		result := r.Stop()
		mu.Lock()
		stopped = append(stopped, result)
		mu.Unlock()
	}))

	sess, err := r.Start(context.Background(), hashcat.CrackRequest{AttackMode: hashcat.AttackMask, HashText: md5Hash, Mask: "?d"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitExit(t, r)

	mu.Lock()
	defer mu.Unlock()
	if len(stopped) != 1 || stopped[0] {
		t.Fatalf("stop after the child exited must report false, got %v", stopped)
	}
	var names []string
	for _, evt := range hub.Filter(sess.ID(), events.KindState) {
		names = append(names, evt.State)
	}
	if len(names) != 3 || names[2] != "exited" {
		t.Fatalf("state events = %v, want [starting running exited]", names)
	}
}
