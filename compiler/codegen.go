package compiler

import (
	"fmt"
	"os"
)

// IRText renders the module as textual IR.
func (c *Compiler) IRText() (string, error) {
	if c.context.Module == nil {
		c.logger.Error("No module to compile")
		return "", fmt.Errorf("no module to compile")
	}
	return c.context.Module.String(), nil
}

// CompileToIR generates textual IR from the module
func (c *Compiler) CompileToIR(outputPath string) error {
	c.logger.Info("Generating textual IR to: %s", outputPath)

	if _, err := c.Finish(); err != nil {
		return err
	}

	irText, err := c.IRText()
	if err != nil {
		return err
	}
	c.logger.Debug("Generated %d bytes of IR text", len(irText))

	if err := os.WriteFile(outputPath, []byte(irText), 0644); err != nil {
		c.logger.Error("Failed to write IR file '%s': %v", outputPath, err)
		return fmt.Errorf("failed to write IR file: %w", err)
	}

	c.logger.Info("Successfully wrote IR to: %s", outputPath)
	return nil
}
