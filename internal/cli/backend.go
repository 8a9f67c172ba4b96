package cli

import (
	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/spf13/cobra"
)

type phoneKeyOutput struct {
	Key string `json:"key" yaml:"key"`
}

func NewBackendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Talk to the application backend directly",
	}

	phone := &cobra.Command{
		Use:   "phone",
		Short: "SMS sign-in against the backend, no federation token involved",
	}
	phone.AddCommand(newBackendPhoneVerifyCommand(), newBackendPhoneConfirmCommand())

	cmd.AddCommand(phone)
	return cmd
}

func newBackendPhoneVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <phone-number>",
		Short: "Ask the backend to send a code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := rt.commandContext(cmd)
			defer cancel()

			pa := rt.phoneAuthenticator()
			key, err := fedauth.Await(ctx, func(h func(fedauth.PhoneKey, error)) {
				pa.VerifyPhone(ctx, args[0], h)
			})
			if err != nil {
				return err
			}
			return rt.print(phoneKeyOutput{Key: key.Key})
		},
	}
}

func newBackendPhoneConfirmCommand() *cobra.Command {
	var key, code string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a code and receive a backend token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := rt.commandContext(cmd)
			defer cancel()

			pa := rt.phoneAuthenticator()
			tok, err := fedauth.Await(ctx, func(h func(fedauth.BackendToken, error)) {
				pa.VerifyCodeAndAuth(ctx, key, code, h)
			})
			if err != nil {
				return err
			}
			return rt.print(newTokenOutput(tok))
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key printed by `backend phone verify`")
	cmd.Flags().StringVar(&code, "code", "", "Received code")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
