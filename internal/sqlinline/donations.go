package sqlinline

const QInsertDonation = `--sql 397e616b-7941-480d-a401-790f40d2407e
insert into donations(id, user_id, comment, full_amount, invested_amount, fully_invested, create_date, close_date)
values ($1::uuid, $2::text, $3::text, $4::bigint, $5::bigint, $6::boolean, $7::timestamptz, $8::timestamptz);
`

const QListDonations = `--sql 4793aeef-c0db-476a-90c3-6c2932d3364c
select id::text, user_id, comment, full_amount, invested_amount, fully_invested, create_date, close_date
from donations
order by create_date asc, id asc;
`

const QListUserDonations = `--sql 2639b23a-2bb2-4509-b3b8-4e8bfea22234
select id::text, user_id, comment, full_amount, invested_amount, fully_invested, create_date, close_date
from donations
where user_id = $1::text
order by create_date asc, id asc;
`

const QListOpenDonations = `--sql deb61e34-17d4-4db3-911e-a6bf40a9474c
select id::text, user_id, comment, full_amount, invested_amount, fully_invested, create_date, close_date
from donations
where not fully_invested
order by create_date asc, id asc;
`

const QSaveDonationAllocation = `--sql 3a0e1abf-55e0-4b3a-ac7d-141f228616b8
update donations
set invested_amount = $2::bigint,
    fully_invested = $3::boolean,
    close_date = $4::timestamptz
where id = $1::uuid;
`
