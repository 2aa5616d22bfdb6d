package cliconfig

import "os"

// ApplyEnvConfig applies PTFLVIEW_* environment variables to cfg, skipping
// values whose flag was set explicitly.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("out-dir", os.Getenv("PTFLVIEW_OUT_DIR"), &cfg.OutDir)
	s.setString("previewer", os.Getenv("PTFLVIEW_PREVIEWER"), &cfg.Previewer)
	s.setString("log-level", os.Getenv("PTFLVIEW_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setFloatFromString("scale", os.Getenv("PTFLVIEW_SCALE"), &cfg.Scale); err != nil {
		return err
	}
	if err := s.setFloatFromString("clip", os.Getenv("PTFLVIEW_CLIP"), &cfg.Clip); err != nil {
		return err
	}
	if err := s.setAnyFloatFromString("lightness", os.Getenv("PTFLVIEW_LIGHTNESS"), &cfg.Lightness); err != nil {
		return err
	}
	if err := s.setFloatFromString("tev-scale", os.Getenv("PTFLVIEW_TEV_SCALE"), &cfg.TevScale); err != nil {
		return err
	}
	if err := s.setFloatFromString("tev-clip", os.Getenv("PTFLVIEW_TEV_CLIP"), &cfg.TevClip); err != nil {
		return err
	}
	if err := s.setIntFromString("workers", os.Getenv("PTFLVIEW_WORKERS"), &cfg.Workers); err != nil {
		return err
	}
	if err := s.setIntFromString("dial-attempts", os.Getenv("PTFLVIEW_DIAL_ATTEMPTS"), &cfg.DialAttempts); err != nil {
		return err
	}

	return nil
}
