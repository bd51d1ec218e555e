package utils

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"
)

// ErrSMTPConfigMissing indicates the mail server is not configured. Login by
// email code cannot work without it; nothing else is affected.
var ErrSMTPConfigMissing = errors.New("SMTP settings are missing, set SMTP_HOST and SMTP_USERNAME")

// EmailConfig holds email configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func loadEmailConfig() (*EmailConfig, error) {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}

	config := &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
	if config.Host == "" || config.Username == "" {
		return nil, ErrSMTPConfigMissing
	}
	if config.From == "" {
		config.From = config.Username
	}
	return config, nil
}

// SendLoginCode sends a one-time login code via email
func SendLoginCode(to, code string) error {
	config, err := loadEmailConfig()
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your AffiliateHub login code")

	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>Use the code below to finish signing in:</p>
		<h1 style="font-size: 28px; letter-spacing: 5px;">%s</h1>
		<p>This code expires in 10 minutes.</p>
		<p>If you didn't request this code, please ignore this email.</p>
	`, code)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}
