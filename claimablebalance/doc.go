/*
Package claimablebalance implements Claimable Balance contract, a minimal
escrow primitive for NEP-17 tokens.

A depositor locks a token amount under a single time condition and names up
to 10 addresses permitted to claim it. Once the condition becomes true,
exactly one of the pre-named claimants may withdraw the whole balance,
first come first served. The balance can never be claimed twice: a
successful claim removes the record, and later claim attempts fail the
same way as on a contract that was never initialized.

A contract instance holds at most one balance during its lifetime. The
initialization marker is kept after the claim, so a spent instance cannot
be reused for a new deposit; every escrow corresponds to a freshly
deployed instance.

The time condition is evaluated against ledger time. A Before bound allows
claiming strictly prior to its timestamp ("claimable up until a deadline"),
an After bound allows claiming at or past it ("claimable once a deadline
has passed").

# Contract notifications

Deposit notification. Produced by a successful Initialize invocation.

	Deposit:
	  - name: depositor
	    type: Hash160
	  - name: token
	    type: Hash160
	  - name: amount
	    type: Integer

Claim notification. Produced by a successful Claim invocation.

	Claim:
	  - name: claimant
	    type: Hash160
	  - name: token
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package claimablebalance

/*
Contract storage model.

# Summary
Key-value storage format:
 - 'i' -> []byte{1}
   initialization marker, set once by Initialize and never removed
 - 'b' -> std.Serialize(ClaimableBalance)
   active balance record, removed by a successful Claim

The balance record exists if and only if assets are currently escrowed and
unclaimed. Its absence together with the initialization marker means the
instance is spent.
*/
