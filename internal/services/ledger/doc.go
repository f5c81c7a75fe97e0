/*
Package ledger moves money between accounts.

The engine is the only writer of balances. Every operation runs as one
storage transaction covering the balance mutation(s) and the transfer
record, so a successful Transfer row always has its balance change
committed and a failed attempt leaves nothing behind.

Concurrency is handled in two layers: both accounts are row-locked in
ascending id order for the duration of the transaction, and every
account write is a compare-and-swap on the account's version counter.
A version mismatch surfaces as ErrConcurrentModification, which the
caller may retry; the engine itself never retries.

Usage:

	svc := ledger.NewService(repo, directory, balanceCache)

	transfer, err := svc.Transfer(ctx, senderUserID, ledger.ReceiverRef{Username: "jane"}, amount, "rent")

	transfer, err = svc.Deposit(ctx, userID, amount, "top up")

After a successful operation the balance cache holds the post-commit
balances of every touched account, so reads inside the TTL window see
the write immediately.
*/
package ledger
