package automation

import (
	"fmt"
	"strconv"
	"strings"
)

// Key names are given in one vocabulary ("ctrl", "alt", "shift", "left",
// "right", "enter", "f5", single letters) and translated per tool.

var xdotoolKeys = map[string]string{
	"ctrl":  "ctrl",
	"alt":   "alt",
	"shift": "shift",
	"left":  "Left",
	"right": "Right",
	"enter": "Return",
	"f5":    "F5",
}

var cliclickKeys = map[string]string{
	"left":  "arrow-left",
	"right": "arrow-right",
	"enter": "return",
	"f5":    "f5",
}

var cliclickModifiers = map[string]string{
	"ctrl":  "cmd",
	"alt":   "alt",
	"shift": "shift",
}

// scrollStep is the number of wheel clicks per 100 units of Scroll.
const scrollStep = 100

func hotkeyArgs(platform string, keys []string) (string, []string, error) {
	switch platform {
	case "linux":
		parts := make([]string, len(keys))
		for i, k := range keys {
			if v, ok := xdotoolKeys[k]; ok {
				k = v
			}
			parts[i] = k
		}
		return "xdotool", []string{"key", "--clearmodifiers", strings.Join(parts, "+")}, nil

	case "darwin":
		var down, up, press []string
		for _, k := range keys {
			if m, ok := cliclickModifiers[k]; ok {
				down = append(down, m)
				up = append(up, m)
				continue
			}
			if v, ok := cliclickKeys[k]; ok {
				press = append(press, "kp:"+v)
			} else {
				press = append(press, "t:"+k)
			}
		}
		var args []string
		if len(down) > 0 {
			args = append(args, "kd:"+strings.Join(down, ","))
		}
		args = append(args, press...)
		if len(up) > 0 {
			args = append(args, "ku:"+strings.Join(up, ","))
		}
		return "cliclick", args, nil
	}
	return "", nil, fmt.Errorf("hotkey: %w", ErrUnsupported)
}

func typeArgs(platform, text string) (string, []string, error) {
	switch platform {
	case "linux":
		return "xdotool", []string{"type", "--delay", "30", "--", text}, nil
	case "darwin":
		return "cliclick", []string{"-w", "30", "t:" + text}, nil
	}
	return "", nil, fmt.Errorf("type: %w", ErrUnsupported)
}

func scrollArgs(platform string, amount int) (string, []string, error) {
	clicks := amount / scrollStep
	if clicks < 0 {
		clicks = -clicks
	}
	if clicks == 0 {
		clicks = 1
	}

	switch platform {
	case "linux":
		button := "4"
		if amount < 0 {
			button = "5"
		}
		return "xdotool", []string{"click", "--repeat", strconv.Itoa(clicks), button}, nil
	case "darwin":
		// cliclick has no wheel action; page keys are the closest.
		key := "kp:page-up"
		if amount < 0 {
			key = "kp:page-down"
		}
		return "cliclick", []string{key}, nil
	}
	return "", nil, fmt.Errorf("scroll: %w", ErrUnsupported)
}
