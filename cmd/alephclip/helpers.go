package main

import (
	"fmt"
	"os"
	"time"
)

// defaultSource returns a human-readable identifier for this host.
func defaultSource() string {
	if v := os.Getenv("ALEPHCLIP_SOURCE"); v != "" {
		return v
	}
	for _, env := range []string{"COMPUTERNAME", "HOSTNAME"} {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
