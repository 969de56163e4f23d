package hashcat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"lovelyhashcat/internal/services"
	"lovelyhashcat/internal/textutil"
)

const (
	// DefaultPotfileName is the potfile hashcat keeps next to its executable.
	DefaultPotfileName = "hashcat.potfile"
	// AuxOutputName is the machine-readable result file written beside the hash file.
	AuxOutputName = "hash_results.txt"
	// DefaultRuntimeSeconds caps a single supervised run.
	DefaultRuntimeSeconds = 60

	outfileFormatHashPlain = 3
)

// AttackMode selects how hashcat generates password candidates.
type AttackMode int

const (
	AttackDictionary         AttackMode = 0
	AttackCombination        AttackMode = 1
	AttackMask               AttackMode = 3
	AttackHybridWordlistMask AttackMode = 6
	AttackHybridMaskWordlist AttackMode = 7
)

var attackModeNames = map[AttackMode]string{
	AttackDictionary:         "dictionary",
	AttackCombination:        "combination",
	AttackMask:               "mask",
	AttackHybridWordlistMask: "hybrid-wordlist-mask",
	AttackHybridMaskWordlist: "hybrid-mask-wordlist",
}

var attackModeAliases = map[string]AttackMode{
	"straight":   AttackDictionary,
	"wordlist":   AttackDictionary,
	"combinator": AttackCombination,
	"brute":      AttackMask,
	"bruteforce": AttackMask,
	"hybrid-dm":  AttackHybridWordlistMask,
	"hybrid-md":  AttackHybridMaskWordlist,
}

func (m AttackMode) String() string {
	if name, ok := attackModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("attack-mode(%d)", int(m))
}

// Valid reports whether m is one of the supported attack modes.
func (m AttackMode) Valid() bool {
	_, ok := attackModeNames[m]
	return ok
}

// ParseAttackMode accepts either the numeric hashcat identifier or a name.
func ParseAttackMode(value string) (AttackMode, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return AttackDictionary, nil
	}
	if n, err := strconv.Atoi(value); err == nil {
		mode := AttackMode(n)
		if !mode.Valid() {
			return 0, fmt.Errorf("unsupported attack mode %d", n)
		}
		return mode, nil
	}
	for mode, name := range attackModeNames {
		if name == value {
			return mode, nil
		}
	}
	if mode, ok := attackModeAliases[value]; ok {
		return mode, nil
	}
	return 0, fmt.Errorf("unknown attack mode %q", value)
}

// CrackRequest captures everything needed to launch one cracking session.
// It is treated as immutable once a session starts.
type CrackRequest struct {
	AttackMode AttackMode `json:"attack_mode"`
	HashFile   string     `json:"hash_file,omitempty"`
	// HashText carries raw hash values when no hash file is supplied; the
	// runner materializes it into a session-owned temp file.
	HashText string `json:"-"`
	// HashMode is a pointer because mode 0 (MD5) is valid and distinct from unset.
	HashMode       *int      `json:"hash_mode,omitempty"`
	Wordlists      []string  `json:"wordlists,omitempty"`
	RuleFile       string    `json:"rule_file,omitempty"`
	Mask           string    `json:"mask,omitempty"`
	Charsets       [4]string `json:"charsets,omitempty"`
	OutputFile     string    `json:"output_file,omitempty"`
	PotfilePath    string    `json:"potfile_path,omitempty"`
	SessionName    string    `json:"session_name,omitempty"`
	Devices        []string  `json:"devices,omitempty"`
	Force          bool      `json:"force,omitempty"`
	Remove         bool      `json:"remove,omitempty"`
	Status         bool      `json:"status,omitempty"`
	StatusTimer    int       `json:"status_timer,omitempty"`
	HWMonTempAbort *int      `json:"hwmon_temp_abort,omitempty"`
	RuntimeSeconds int       `json:"runtime_seconds,omitempty"`
	SkipOutput     bool      `json:"skip_output,omitempty"`
}

// IntPtr is a convenience for populating optional integer request fields.
func IntPtr(v int) *int {
	return &v
}

// Command is a fully resolved invocation of the hashcat executable.
type Command struct {
	Binary  string
	Args    []string
	WorkDir string
	// OutputFile is the auxiliary hash:password file hashcat writes, empty when disabled.
	OutputFile string
	// PotfilePath is the potfile passed to hashcat.
	PotfilePath string
}

// Argv returns the complete argument vector including the executable.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Binary)
	return append(argv, c.Args...)
}

func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Builder turns requests into hashcat invocations.
type Builder struct {
	binary         string
	runtimeSeconds int
}

// BuilderOption configures the builder.
type BuilderOption func(*Builder)

// WithRuntimeSeconds overrides the default runtime ceiling.
func WithRuntimeSeconds(seconds int) BuilderOption {
	return func(b *Builder) {
		if seconds > 0 {
			b.runtimeSeconds = seconds
		}
	}
}

// NewBuilder validates the executable path and constructs a builder.
func NewBuilder(binary string, opts ...BuilderOption) (*Builder, error) {
	binary = strings.TrimSpace(binary)
	if err := validateExecutable(binary); err != nil {
		return nil, err
	}
	b := &Builder{binary: binary, runtimeSeconds: DefaultRuntimeSeconds}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Binary returns the validated executable path.
func (b *Builder) Binary() string {
	return b.binary
}

// DefaultPotfile returns the potfile colocated with the executable.
func (b *Builder) DefaultPotfile() string {
	return DefaultPotfileFor(b.binary)
}

// DefaultPotfileFor returns the potfile colocated with binary.
func DefaultPotfileFor(binary string) string {
	return filepath.Join(filepath.Dir(binary), DefaultPotfileName)
}

// Crack builds the argument vector for a cracking run.
func (b *Builder) Crack(req CrackRequest) (Command, error) {
	if err := validateExecutable(b.binary); err != nil {
		return Command{}, err
	}
	if err := ValidateRequest(req); err != nil {
		return Command{}, err
	}

	args := make([]string, 0, 32)
	if req.HashFile != "" {
		args = append(args, req.HashFile)
	}
	if req.HashMode != nil {
		args = append(args, "-m", strconv.Itoa(*req.HashMode))
	}
	args = append(args, "-a", strconv.Itoa(int(req.AttackMode)))
	args = append(args, modeArgs(req)...)
	for i, charset := range req.Charsets {
		if charset != "" {
			args = append(args, fmt.Sprintf("-%d", i+1), charset)
		}
	}

	if name := strings.TrimSpace(req.SessionName); name != "" {
		args = append(args, "--session", textutil.SanitizeToken(name))
	}
	if len(req.Devices) > 0 {
		args = append(args, "-d", strings.Join(req.Devices, ","))
	}
	if req.Force {
		args = append(args, "--force")
	}
	if req.Remove {
		args = append(args, "--remove")
	}
	if req.Status {
		args = append(args, "--status")
	}
	if req.StatusTimer > 0 {
		args = append(args, "--status-timer", strconv.Itoa(req.StatusTimer))
	}
	if req.HWMonTempAbort != nil {
		args = append(args, "--hwmon-temp-abort", strconv.Itoa(*req.HWMonTempAbort))
	}

	runtime := b.runtimeSeconds
	if req.RuntimeSeconds > 0 {
		runtime = req.RuntimeSeconds
	}
	args = append(args,
		"--keep-guessing",
		"--outfile-autohex-disable",
		fmt.Sprintf("--runtime=%d", runtime),
	)

	cmd := Command{Binary: b.binary, WorkDir: filepath.Dir(b.binary)}
	if !req.SkipOutput {
		cmd.OutputFile = AuxOutputPath(req)
		args = append(args, "-o", cmd.OutputFile, fmt.Sprintf("--outfile-format=%d", outfileFormatHashPlain))
	}

	cmd.PotfilePath = req.PotfilePath
	if cmd.PotfilePath == "" {
		cmd.PotfilePath = b.DefaultPotfile()
	}
	args = append(args, "--potfile-path", cmd.PotfilePath)

	cmd.Args = args
	return cmd, nil
}

// Show builds the companion invocation that prints already cracked hashes.
func (b *Builder) Show(hashFile, potfilePath string) (Command, error) {
	if err := validateExecutable(b.binary); err != nil {
		return Command{}, err
	}
	if strings.TrimSpace(hashFile) == "" {
		return Command{}, services.Wrap(services.ErrValidation, "hashcat", "show", "hash file required", nil)
	}
	args := []string{"--show", hashFile}
	if potfilePath != "" {
		args = append(args, "--potfile-path", potfilePath)
	}
	return Command{Binary: b.binary, Args: args, WorkDir: filepath.Dir(b.binary), PotfilePath: potfilePath}, nil
}

// Left builds the companion invocation that prints hashes not yet cracked.
func (b *Builder) Left(hashFile, potfilePath string) (Command, error) {
	if err := validateExecutable(b.binary); err != nil {
		return Command{}, err
	}
	args := []string{"--left"}
	if hashFile != "" {
		args = append(args, hashFile)
	}
	if potfilePath != "" {
		args = append(args, "--potfile-path", potfilePath)
	}
	return Command{Binary: b.binary, Args: args, WorkDir: filepath.Dir(b.binary), PotfilePath: potfilePath}, nil
}

// DeviceInfo builds the backend/device enumeration invocation.
func (b *Builder) DeviceInfo() (Command, error) {
	if err := validateExecutable(b.binary); err != nil {
		return Command{}, err
	}
	return Command{Binary: b.binary, Args: []string{"-I"}, WorkDir: filepath.Dir(b.binary)}, nil
}

// AuxOutputPath returns the auxiliary result file for req.
func AuxOutputPath(req CrackRequest) string {
	if req.OutputFile != "" {
		return req.OutputFile
	}
	return filepath.Join(filepath.Dir(req.HashFile), AuxOutputName)
}

// ValidateRequest checks the mode-specific fields required by the attack mode.
func ValidateRequest(req CrackRequest) error {
	fail := func(msg string) error {
		return services.Wrap(services.ErrValidation, "hashcat", "build", msg, nil)
	}
	switch req.AttackMode {
	case AttackDictionary:
		if firstNonEmpty(req.Wordlists, 0) == "" {
			return fail("dictionary attack requires a wordlist")
		}
	case AttackCombination:
		if firstNonEmpty(req.Wordlists, 0) == "" || firstNonEmpty(req.Wordlists, 1) == "" {
			return fail("combination attack requires two wordlists")
		}
	case AttackMask:
		if strings.TrimSpace(req.Mask) == "" {
			return fail("mask attack requires a mask")
		}
	case AttackHybridWordlistMask, AttackHybridMaskWordlist:
		if firstNonEmpty(req.Wordlists, 0) == "" || strings.TrimSpace(req.Mask) == "" {
			return fail("hybrid attack requires a wordlist and a mask")
		}
	default:
		return fail(fmt.Sprintf("unsupported attack mode %d", int(req.AttackMode)))
	}
	if req.HashMode != nil && *req.HashMode < 0 {
		return fail("hash mode must not be negative")
	}
	return nil
}

func modeArgs(req CrackRequest) []string {
	switch req.AttackMode {
	case AttackDictionary:
		args := []string{req.Wordlists[0]}
		if req.RuleFile != "" {
			args = append(args, "-r", req.RuleFile)
		}
		return args
	case AttackCombination:
		return []string{req.Wordlists[0], req.Wordlists[1]}
	case AttackMask:
		return []string{req.Mask}
	case AttackHybridWordlistMask:
		return []string{req.Wordlists[0], req.Mask}
	case AttackHybridMaskWordlist:
		return []string{req.Mask, req.Wordlists[0]}
	}
	return nil
}

func firstNonEmpty(values []string, idx int) string {
	if idx >= len(values) {
		return ""
	}
	return strings.TrimSpace(values[idx])
}

func validateExecutable(binary string) error {
	if binary == "" {
		return services.Wrap(services.ErrInvalidExecutable, "hashcat", "validate", "executable path not configured", nil)
	}
	info, err := os.Stat(binary)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrInvalidExecutable, "hashcat", "validate", fmt.Sprintf("executable %s does not exist", binary), nil)
		}
		return services.Wrap(services.ErrInvalidExecutable, "hashcat", "validate", "stat executable", err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrInvalidExecutable, "hashcat", "validate", fmt.Sprintf("%s is a directory", binary), nil)
	}
	return nil
}
