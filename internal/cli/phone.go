package cli

import (
	"github.com/aussiebroadwan/fedauth/pkg/fedauth"
	"github.com/spf13/cobra"
)

type verificationOutput struct {
	VerificationID string `json:"verificationId" yaml:"verificationId"`
}

func NewPhoneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phone",
		Short: "SMS sign-in through the federation backend",
	}
	cmd.AddCommand(newPhoneSendCommand(), newPhoneConfirmCommand())
	return cmd
}

func newPhoneSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <phone-number>",
		Short: "Send a verification code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := rt.commandContext(cmd)
			defer cancel()

			p := &fedauth.PhoneProvider{Verifier: rt.federation(), Queue: fedauth.Inline}
			key, err := fedauth.Await(ctx, func(h func(*fedauth.RequestKey, error)) {
				p.VerifyPhone(ctx, args[0], h)
			})
			if err != nil {
				return err
			}
			return rt.print(verificationOutput{VerificationID: key.VerificationID()})
		},
	}
}

func newPhoneConfirmCommand() *cobra.Command {
	var verificationID, code string

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a verification code and exchange for a backend token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := rt.commandContext(cmd)
			defer cancel()

			federation := rt.federation()
			p := (&fedauth.PhoneProvider{Verifier: federation, Queue: fedauth.Inline}).
				WithCode(fedauth.NewRequestKey(verificationID), code)

			x := rt.exchanger(federation)
			tok, err := fedauth.Await(ctx, func(h func(fedauth.BackendToken, error)) {
				x.Auth(ctx, p, h)
			})
			if err != nil {
				return err
			}
			return rt.print(newTokenOutput(tok))
		},
	}

	cmd.Flags().StringVar(&verificationID, "verification-id", "", "Verification id printed by `phone send`")
	cmd.Flags().StringVar(&code, "code", "", "Received code")
	_ = cmd.MarkFlagRequired("verification-id")
	return cmd
}
