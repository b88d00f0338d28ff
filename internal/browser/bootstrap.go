package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/melvorminer/melvorminer/internal/config"
	"github.com/melvorminer/melvorminer/internal/utils"
)

const readyScript = `(() => typeof game !== 'undefined' && !!game.mining && !!game.combat && game.loopStarted === true)()`

const selectCharacterScript = `(() => {
	const name = %s;
	const slots = document.querySelectorAll(%s);
	for (const slot of slots) {
		if (slot.textContent && slot.textContent.includes(name)) {
			slot.click();
			return true;
		}
	}
	return false;
})()`

// Bootstrap gets the browser from a blank tab to a loaded character, ready to mine.
func (s *Session) Bootstrap(ctx context.Context, cfg *config.Config) error {
	steps := []struct {
		name string
		fn   func(context.Context, *config.Config) error
	}{
		{"navigate", s.navigate},
		{"login", s.login},
		{"select character", s.selectCharacter},
		{"ready check", s.waitGameReady},
	}

	for _, st := range steps {
		if err := st.fn(ctx, cfg); err != nil {
			return fmt.Errorf("bootstrap %s: %w", st.name, err)
		}
	}

	s.logger.Info("Game Loaded. Beginning continuous mining operation.")
	return nil
}

func (s *Session) navigate(ctx context.Context, cfg *config.Config) error {
	s.logger.Info("Navigating to game", "url", cfg.GameURL)
	return s.Run(ctx, chromedp.Navigate(cfg.GameURL))
}

func (s *Session) login(ctx context.Context, cfg *config.Config) error {
	sel := cfg.Browser.Selectors

	var hasForm bool
	if err := s.Run(ctx, chromedp.Evaluate(fmt.Sprintf(`!!document.querySelector(%s)`, jsString(sel.Username)), &hasForm)); err != nil {
		return err
	}
	if !hasForm {
		s.logger.Info("Login form not present, assuming the profile is already logged in")
		return nil
	}
	if cfg.Username == "" || cfg.Password == "" {
		return fmt.Errorf("login form shown but no credentials configured")
	}

	s.logger.Info("Logging in", "username", cfg.Username)
	return s.Run(ctx,
		chromedp.WaitVisible(sel.Username, chromedp.ByQuery),
		chromedp.SendKeys(sel.Username, cfg.Username, chromedp.ByQuery),
		chromedp.SendKeys(sel.Password, cfg.Password, chromedp.ByQuery),
		chromedp.Click(sel.LoginButton, chromedp.ByQuery),
	)
}

func (s *Session) selectCharacter(ctx context.Context, cfg *config.Config) error {
	if cfg.CharacterName == "" {
		s.logger.Warn("No character name configured, skipping character selection")
		return nil
	}

	sel := cfg.Browser.Selectors.CharacterSlot
	s.logger.Info("Selecting character", "character", cfg.CharacterName)

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Browser.ReadyTimeout.Std())
	defer cancel()
	if err := s.Run(waitCtx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("character selection screen not shown: %w", err)
	}

	var clicked bool
	script := fmt.Sprintf(selectCharacterScript, jsString(cfg.CharacterName), jsString(sel))
	if err := s.Run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("character %q not found", cfg.CharacterName)
	}

	return nil
}

func (s *Session) waitGameReady(ctx context.Context, cfg *config.Config) error {
	deadline := time.Now().Add(cfg.Browser.ReadyTimeout.Std())
	for time.Now().Before(deadline) {
		var ready bool
		if err := s.Run(ctx, chromedp.Evaluate(readyScript, &ready)); err != nil {
			s.logger.Debug("Game not ready yet", "error", err)
		} else if ready {
			return nil
		}

		if err := utils.Sleep(ctx, time.Second); err != nil {
			return err
		}
	}

	return fmt.Errorf("game not ready after %s", cfg.Browser.ReadyTimeout.Std())
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
