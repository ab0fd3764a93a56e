/*
Package wallet provides read access to user wallets and the currency change
path.

The wallet service handles:
- Lazy provisioning of an empty wallet on first access
- Balance snapshots and push updates over redis pub/sub
- Currency changes with an audited conversion
- Ledger history

Usage:

	svc := wallet.NewService(repo, converter, bus, wallet.WalletConfig{DefaultCurrency: "INR"}, log, metrics)

	// Current balance
	snap, err := svc.GetBalance(ctx, userID)

	// Push updates until ctx is done
	updates, err := svc.Subscribe(ctx, userID)

	// Switch a wallet to USD, converting any balance
	change, err := svc.ChangeCurrency(ctx, userID, models.CurrencyUSD)

Currency changes:

A change runs in one transaction holding the wallet row lock. A non-zero
balance is converted with currency.Converter and a currency_conversion ledger
entry (amount 0, status APPROVED) is written before the wallet row. Its
metadata records originalCurrency, originalAmount, newCurrency, newAmount and
rate. If the entry cannot be written the whole change rolls back.

Error Handling:

- errors.ErrValidation: unsupported currency, or the wallet already uses it
- errors.ErrConcurrentUpdate: the wallet row changed under the transaction
*/
package wallet
